package money

import (
	"fmt"
	"math"
)

// Money は最小通貨単位（セント）で表した金額
type Money int64

// basisPointsPerUnit は1.0に相当するベーシスポイント
const basisPointsPerUnit = 10000

// FromFloat は小数表記の金額をMoneyに変換する（小数第3位で四捨五入）
func FromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

// Float64 は小数表記の金額を返す
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// Times は金額をn倍する
func (m Money) Times(n int) Money {
	return m * Money(n)
}

// ApplyRate はベーシスポイントで表した率を掛け、セント単位で四捨五入する
func (m Money) ApplyRate(bp int64) Money {
	v := int64(m) * bp
	if v >= 0 {
		return Money((v + basisPointsPerUnit/2) / basisPointsPerUnit)
	}
	return Money((v - basisPointsPerUnit/2) / basisPointsPerUnit)
}

// String は "772.50" 形式の文字列を返す
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// RateToBasisPoints は 0.03 のような率をベーシスポイント（300）に変換する
func RateToBasisPoints(rate float64) int64 {
	return int64(math.Round(rate * basisPointsPerUnit))
}
