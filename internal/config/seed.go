package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoomSeed は起動時に投入する客室の定義
type RoomSeed struct {
	Number        string  `yaml:"number"`
	Type          string  `yaml:"type"`
	PricePerNight float64 `yaml:"price_per_night"`
	Capacity      int     `yaml:"capacity"`
}

type roomSeedFile struct {
	Rooms []RoomSeed `yaml:"rooms"`
}

// LoadRoomSeeds はYAMLファイルから客室定義を読み込む
func LoadRoomSeeds(path string) ([]RoomSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("客室シードファイルの読み込みに失敗: %w", err)
	}
	return ParseRoomSeeds(data)
}

// ParseRoomSeeds はYAMLから客室定義を解析する
func ParseRoomSeeds(data []byte) ([]RoomSeed, error) {
	var f roomSeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("客室シードの解析に失敗: %w", err)
	}
	return f.Rooms, nil
}
