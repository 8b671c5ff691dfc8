package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/routegrid-microservice/internal/domain"
)

// colorOverride - строка YAML-файла переопределения таблицы цветов
type colorOverride struct {
	Color      string  `mapstructure:"color"`
	Category   string  `mapstructure:"category"`
	Multiplier float64 `mapstructure:"multiplier"`
	Infeasible bool    `mapstructure:"infeasible"`
}

// LoadColorTable накладывает цвета из YAML-файла поверх base.
// Пустой path возвращает base без изменений.
//
// Формат файла:
//
//	colors:
//	  - color: "#aad3df"
//	    category: Water
//	    infeasible: true
//	  - color: "#f2efe9"
//	    category: Land
//	    multiplier: 1.2
func LoadColorTable(path string, base *domain.ColorCostTable) (*domain.ColorCostTable, error) {
	if path == "" {
		return base, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read color table %s: %w", path, err)
	}

	var rows []colorOverride
	if err := v.UnmarshalKey("colors", &rows); err != nil {
		return nil, fmt.Errorf("failed to parse color table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("color table %s has no colors", path)
	}

	overrides := make([]domain.ColorEntry, 0, len(rows))
	for i, row := range rows {
		if row.Category == "" {
			return nil, fmt.Errorf("color table %s: entry %d has no category", path, i)
		}
		class := domain.TerrainClass{Category: row.Category, Multiplier: row.Multiplier, Tier: domain.TierPassable}
		if row.Infeasible {
			class = domain.TerrainClass{Category: row.Category, Tier: domain.TierInfeasible}
		}
		overrides = append(overrides, domain.ColorEntry{Color: row.Color, TerrainClass: class})
	}

	table, err := base.WithOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("color table %s: %w", path, err)
	}
	return table, nil
}

// GridOptions - параметры построения сетки из конфигурации
func (c *Config) GridOptions() domain.GridOptions {
	return domain.GridOptions{
		ZoomLevel:       c.Grid.ZoomLevel,
		CellSizeMeters:  c.Grid.CellSizeMeters,
		DefaultCost:     c.Grid.DefaultCost,
		InfeasibleShare: c.Grid.InfeasibleShare,
	}
}

// LookupOptions - радиусы поиска точки подключения из конфигурации
func (c *Config) LookupOptions() domain.LookupOptions {
	return domain.LookupOptions{
		InitialRadiusMeters: c.Lookup.InitialRadius,
		MaxRadiusMeters:     c.Lookup.MaxRadius,
		StepMeters:          c.Lookup.RadiusStep,
	}
}
