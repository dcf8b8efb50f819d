package payment

import "github.com/sanosuguru/go-hotel-reservation/internal/domain/money"

// Quote は宿泊料金の見積もり
type Quote struct {
	Nights     int
	BaseAmount money.Money
	Surcharge  money.Money
	Amount     money.Money
}

// NewQuote は宿泊数と1泊料金から見積もりを計算する
// 手数料はベーシスポイントで指定し、セント単位で四捨五入する
func NewQuote(nights int, pricePerNight money.Money, surchargeBP int64) Quote {
	base := pricePerNight.Times(nights)
	surcharge := base.ApplyRate(surchargeBP)
	return Quote{
		Nights:     nights,
		BaseAmount: base,
		Surcharge:  surcharge,
		Amount:     base + surcharge,
	}
}
