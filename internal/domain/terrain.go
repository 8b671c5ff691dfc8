package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
)

// CostTier - уровень проходимости пикселя/ячейки
type CostTier int

const (
	TierPassable CostTier = iota
	TierInfeasible
)

func (t CostTier) String() string {
	switch t {
	case TierPassable:
		return "passable"
	case TierInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// MarshalText сериализует tier строкой (passable/infeasible)
func (t CostTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText разбирает tier из строки
func (t *CostTier) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "passable", "":
		*t = TierPassable
	case "infeasible":
		*t = TierInfeasible
	default:
		return fmt.Errorf("unknown cost tier %q", string(text))
	}
	return nil
}

const (
	// InfeasibleCost - стоимость, по которой поиск пути распознаёт непроходимую ячейку
	InfeasibleCost = float64(math.MaxInt32)

	// DefaultCellCost - стоимость ячейки без единого классифицированного пикселя
	DefaultCellCost = 1.59
)

// Color - цвет пикселя 0xRRGGBB (альфа-канал не учитывается)
type Color uint32

// RGB собирает Color из компонент
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// ParseHexColor разбирает цвет вида "#rrggbb"
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q: expected #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// Hex возвращает цвет в виде "#rrggbb"
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c))
}

// TerrainClass - семантическая категория цвета и множитель стоимости
type TerrainClass struct {
	Category   string   `json:"category"`
	Multiplier float64  `json:"multiplier"`
	Tier       CostTier `json:"tier"`
}

// Cost возвращает стоимость пикселя с учётом tier
func (c TerrainClass) Cost() float64 {
	if c.Tier == TierInfeasible {
		return InfeasibleCost
	}
	return c.Multiplier
}

func passable(category string, multiplier float64) TerrainClass {
	return TerrainClass{Category: category, Multiplier: multiplier, Tier: TierPassable}
}

func infeasible(category string) TerrainClass {
	return TerrainClass{Category: category, Tier: TierInfeasible}
}

// ColorEntry - строка таблицы цветов (для вывода и конфигурации)
type ColorEntry struct {
	Color string `json:"color"`
	TerrainClass
}

// ColorCostTable - неизменяемое отображение цвет → (категория, множитель)
type ColorCostTable struct {
	entries map[Color]TerrainClass
}

// NewColorCostTable строит таблицу из hex-ключей
func NewColorCostTable(entries map[string]TerrainClass) (*ColorCostTable, error) {
	table := &ColorCostTable{entries: make(map[Color]TerrainClass, len(entries))}
	for key, class := range entries {
		color, err := ParseHexColor(key)
		if err != nil {
			return nil, err
		}
		if class.Tier == TierPassable && class.Multiplier < 0 {
			return nil, fmt.Errorf("color %s: negative multiplier %v", key, class.Multiplier)
		}
		table.entries[color] = class
	}
	return table, nil
}

// Lookup возвращает класс местности для цвета или ErrUnclassifiedColor
func (t *ColorCostTable) Lookup(c Color) (TerrainClass, error) {
	class, ok := t.entries[c]
	if !ok {
		return TerrainClass{}, pkgerrors.ErrUnclassifiedColor
	}
	return class, nil
}

// Len возвращает количество зарегистрированных цветов
func (t *ColorCostTable) Len() int {
	return len(t.entries)
}

// WithOverrides возвращает копию таблицы с заменёнными/добавленными цветами
func (t *ColorCostTable) WithOverrides(overrides []ColorEntry) (*ColorCostTable, error) {
	merged := make(map[string]TerrainClass, len(t.entries)+len(overrides))
	for color, class := range t.entries {
		merged[color.Hex()] = class
	}
	for _, o := range overrides {
		c, err := ParseHexColor(o.Color)
		if err != nil {
			return nil, err
		}
		merged[c.Hex()] = o.TerrainClass
	}
	return NewColorCostTable(merged)
}

// Entries возвращает строки таблицы, отсортированные по цвету
func (t *ColorCostTable) Entries() []ColorEntry {
	result := make([]ColorEntry, 0, len(t.entries))
	for color, class := range t.entries {
		result = append(result, ColorEntry{Color: color.Hex(), TerrainClass: class})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Color < result[j].Color })
	return result
}

// Цвета стандартного стиля OpenStreetMap (Carto) и связанных стилей.
var defaultColorClasses = map[string]TerrainClass{
	"#e892a2": passable("Motor Way", 1.70),
	"#dc2a67": passable("Motor Way", 1.70),
	"#f9b29c": passable("Main Road", 1.60),
	"#fcd6a4": passable("Main Road", 1.60),
	"#f7fabf": passable("Main Road", 1.60),
	"#c84e2f": passable("Main Road", 1.60),
	"#a06b00": passable("Main Road", 1.60),
	"#707d05": passable("Main Road", 1.60),
	"#a97e27": passable("Track", 1.2),
	"#57b257": passable("Bridleway", 1.2),
	"#7a7cf6": passable("Cycleway", 1.2),
	"#fa7671": passable("Footway", 1.2),
	"#999999": passable("Railway", 1.5),
	"#bcbcbc": passable("Railway", 1.5),
	"#777777": passable("Railway", 1.5),
	"#333333": passable("Light Rail and Tram", 1.7),
	"#b7b7b7": passable("Cable Car and Chairlift", 1.75),
	"#bdbdcd": infeasible("Airport Runway and Taxiway"),
	"#cc99ff": infeasible("Airport Apron and Terminal"),
	"#e3aeec": passable("Administrative Boundary", 1.0),
	"#8dc56c": passable("Forest", 2.25),
	"#aed1a0": passable("Wood", 2.25),
	"#b5e3b5": infeasible("Golf Course"),
	"#b6fdb6": infeasible("Park"),
	"#aedfa3": infeasible("Park"),
	"#cccccc": passable("Residential Area", 1.49),
	"#cfeca8": passable("Common and Meadow", 1.0),
	"#f1dada": passable("Retail Area", 1.69),
	"#ffaeb9": passable("Industrial Area", 1.49),
	"#efc8c8": passable("Commercial Area", 1.59),
	"#ffffc0": passable("Heathland", 1.0),
	"#b5d0d0": infeasible("Lake and Reservoir"),
	"#ead8bd": passable("Farm", 1.0),
	"#9d9d6c": passable("Brownfield Site", 1.59),
	"#aacbaf": passable("Cemetery", 1.8),
	"#c8b084": passable("Allotments", 1.0),
	"#8ad3af": infeasible("Sports Pitch"),
	"#33cc99": infeasible("Sports Centre"),
	"#abdf96": infeasible("Nature Reserve"),
	"#cee3c5": infeasible("Nature Reserve"),
	"#e18f8f": infeasible("Military Area"),
	"#f0f0d8": infeasible("School and University"),
	"#eef0d5": passable("Wetland", 1.2),
	"#cc9999": infeasible("Significant Building"),
	"#d08f55": passable("Summit and Peak", 2.25),
	"#bdbece": passable("Motorway", 1.70),
	"#9a9ab1": passable("Motorway", 1.70),
	"#c8d8c8": passable("Trunk Road", 1.5),
	"#abb5a4": passable("Trunk Road", 1.5),
	"#d8c8c8": passable("Primary Road", 1.5),
	"#f0e3e3": passable("Primary Road", 1.5),
	"#d4b6b7": passable("Primary Road", 1.5),
	"#dadacc": passable("Secondary Road", 1.5),
	"#ededc8": passable("Secondary Road", 1.5),
	"#c8b48a": passable("Secondary Road", 1.5),
	"#9f6f0f": passable("Track", 1.2),
	"#0100fe": passable("Cycleway", 1.2),
	"#fe0000": passable("National Cycleway", 1.2),
	"#28c8fe": passable("Regional Cycleway", 1.2),
	"#b2b2ff": passable("Local Cycleway", 1.2),
	"#bd6d6e": passable("Footway", 1.2),
	"#cde1c4": passable("Forest", 2.25),
	"#bcdd92": passable("Common and Meadow", 1.0),
	"#f2efe8": passable("Urban Area", 1.59),
	"#f4e1ec": passable("Urban Area", 1.59),
	"#e0dfdf": passable("Urban Area", 1.59),
	"#f2efe9": passable("Urban Area", 1.59),
	"#f4f2ed": passable("Urban Area", 1.59),
	"#f7f5f1": passable("Urban Area", 1.59),
	"#add19e": infeasible("Nature Reserve"),
	"#aad3df": infeasible("Water"),
	"#d1d1d0": passable("Common and Meadow", 1.0),
	"#ffffff": passable("Road", 1.2),
	"#d9d0c9": infeasible("Building"),
	"#bfb0a4": infeasible("Building"),
}

// DefaultColorCostTable возвращает встроенную таблицу цветов
func DefaultColorCostTable() *ColorCostTable {
	table, err := NewColorCostTable(defaultColorClasses)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in color table: %v", err))
	}
	return table
}
