package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceSettings are the per-source knobs. Base score and admission floor are
// deliberately per source (5/4/6/7 bases, heterogeneous floors) — do not
// unify them, output compatibility depends on the exact values.
type SourceSettings struct {
	Enabled        bool    `yaml:"enabled"`
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	DelaySeconds   float64 `yaml:"delay_seconds"`
	MaxResults     int     `yaml:"max_results"`
	BaseScore      int     `yaml:"base_score"`
	MinScore       int     `yaml:"min_score"`
}

// Section is one listing page of a scraped site.
type Section struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Cache struct {
		TTLSeconds     int `yaml:"ttl_seconds"`
		JanitorSeconds int `yaml:"janitor_seconds"`
	} `yaml:"cache"`

	Sources struct {
		BOE struct {
			SourceSettings `yaml:",inline"`
			WindowDays     int `yaml:"window_days"`
		} `yaml:"boe"`
		EUFunding struct {
			SourceSettings `yaml:",inline"`
			PageSize       int `yaml:"page_size"`
		} `yaml:"eu_funding"`
		CDTI struct {
			SourceSettings   `yaml:",inline"`
			Sections         []Section `yaml:"sections"`
			LinkDelaySeconds float64   `yaml:"link_delay_seconds"`
			PerSectionLimit  int       `yaml:"per_section_limit"`
		} `yaml:"cdti"`
		IDAE struct {
			SourceSettings   `yaml:",inline"`
			LinkDelaySeconds float64 `yaml:"link_delay_seconds"`
			PerPageLimit     int     `yaml:"per_page_limit"`
		} `yaml:"idae"`
	} `yaml:"sources"`

	Policy Policy `yaml:"policy"`
}

func (s SourceSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func (s SourceSettings) Delay() time.Duration {
	return time.Duration(s.DelaySeconds * float64(time.Second))
}

func SecondsDuration(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Load reads the YAML file at path and fills in defaults for anything the
// file leaves unset (notably the policy tables).
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.Policy.fillDefaults()
	return cfg, nil
}

// Default returns the built-in configuration: all four sources enabled with
// the observed timeouts and pacing, 30-minute cache, default policy tables.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.DataDir = "."

	cfg.Cache.TTLSeconds = 1800
	cfg.Cache.JanitorSeconds = 300

	cfg.Sources.BOE.Enabled = true
	cfg.Sources.BOE.BaseURL = "https://www.boe.es/datosabiertos/api/sumario"
	cfg.Sources.BOE.TimeoutSeconds = 15
	cfg.Sources.BOE.DelaySeconds = 0.3
	cfg.Sources.BOE.WindowDays = 15
	cfg.Sources.BOE.MaxResults = 10
	cfg.Sources.BOE.BaseScore = 5

	cfg.Sources.EUFunding.Enabled = true
	cfg.Sources.EUFunding.BaseURL = "https://api.tech.ec.europa.eu/search-api/prod/rest/search"
	cfg.Sources.EUFunding.TimeoutSeconds = 20
	cfg.Sources.EUFunding.DelaySeconds = 1
	cfg.Sources.EUFunding.PageSize = 50
	cfg.Sources.EUFunding.MaxResults = 10
	cfg.Sources.EUFunding.BaseScore = 4

	cfg.Sources.CDTI.Enabled = true
	cfg.Sources.CDTI.BaseURL = "https://www.cdti.es"
	cfg.Sources.CDTI.TimeoutSeconds = 15
	cfg.Sources.CDTI.DelaySeconds = 2
	cfg.Sources.CDTI.LinkDelaySeconds = 1
	cfg.Sources.CDTI.PerSectionLimit = 15
	cfg.Sources.CDTI.MaxResults = 8
	cfg.Sources.CDTI.BaseScore = 6
	cfg.Sources.CDTI.MinScore = 4
	cfg.Sources.CDTI.Sections = []Section{
		{Name: "ayudas_empresas", URL: "https://www.cdti.es/index.asp?MP=4&MS=0&MN=1"},
		{Name: "programas_cooperacion", URL: "https://www.cdti.es/index.asp?MP=4&MS=0&MN=4"},
		{Name: "convocatorias", URL: "https://www.cdti.es/index.asp?MP=100&MS=606&MN=2"},
	}

	cfg.Sources.IDAE.Enabled = true
	cfg.Sources.IDAE.BaseURL = "https://www.idae.es/ayudas-y-financiacion"
	cfg.Sources.IDAE.TimeoutSeconds = 15
	cfg.Sources.IDAE.DelaySeconds = 2
	cfg.Sources.IDAE.LinkDelaySeconds = 1
	cfg.Sources.IDAE.PerPageLimit = 15
	cfg.Sources.IDAE.MaxResults = 8
	cfg.Sources.IDAE.BaseScore = 7
	cfg.Sources.IDAE.MinScore = 5

	cfg.Policy.fillDefaults()
	return cfg
}
