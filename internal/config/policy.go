package config

// Policy holds the keyword tables the relevance filter evaluates. They are
// data, not code, so per-source behavior can be tuned (and unit-tested)
// without touching the adapters. The match vocabularies are Spanish because
// that is the language of the scraped documents; the catalog keys are the
// English facet values the API speaks.
type Policy struct {
	// RelevanceAny gates candidates: a title qualifies only if it contains
	// at least one of these.
	RelevanceAny []string `yaml:"relevance_any"`

	// HighValueAny bumps the score once when any term matches.
	HighValueAny []string `yaml:"high_value_any"`
	// InnovationAny bumps per matched term on the scraped-source path.
	InnovationAny []string `yaml:"innovation_any"`
	// MediumValueAny bumps per matched term on the scraped-source path.
	MediumValueAny []string `yaml:"medium_value_any"`
	// LowValueAny penalizes amendments, corrections and extensions.
	LowValueAny []string `yaml:"low_value_any"`

	HighValueBonus   int `yaml:"high_value_bonus"`
	InnovationBonus  int `yaml:"innovation_bonus"`
	MediumValueBonus int `yaml:"medium_value_bonus"`
	LowValuePenalty  int `yaml:"low_value_penalty"`

	// EUAny marks a text as EU-targeted; EUExcludeAny is the slightly
	// narrower set used to reject EU-targeted texts from Spain searches.
	EUAny        []string `yaml:"eu_any"`
	EUExcludeAny []string `yaml:"eu_exclude_any"`

	SectorKeywords map[string][]string `yaml:"sector_keywords"`
	RegionKeywords map[string][]string `yaml:"region_keywords"`

	// CompanyTypeKeywords drives company-type inference on scraped pages.
	CompanyTypeKeywords map[string][]string `yaml:"company_type_keywords"`

	// ExcludeAny rejects navigation/boilerplate links on scraped sites.
	ExcludeAny []string `yaml:"exclude_any"`
}

// fillDefaults populates any table the config file left empty.
func (p *Policy) fillDefaults() {
	def := defaultPolicy()
	if len(p.RelevanceAny) == 0 {
		p.RelevanceAny = def.RelevanceAny
	}
	if len(p.HighValueAny) == 0 {
		p.HighValueAny = def.HighValueAny
	}
	if len(p.InnovationAny) == 0 {
		p.InnovationAny = def.InnovationAny
	}
	if len(p.MediumValueAny) == 0 {
		p.MediumValueAny = def.MediumValueAny
	}
	if len(p.LowValueAny) == 0 {
		p.LowValueAny = def.LowValueAny
	}
	if p.HighValueBonus == 0 {
		p.HighValueBonus = def.HighValueBonus
	}
	if p.InnovationBonus == 0 {
		p.InnovationBonus = def.InnovationBonus
	}
	if p.MediumValueBonus == 0 {
		p.MediumValueBonus = def.MediumValueBonus
	}
	if p.LowValuePenalty == 0 {
		p.LowValuePenalty = def.LowValuePenalty
	}
	if len(p.EUAny) == 0 {
		p.EUAny = def.EUAny
	}
	if len(p.EUExcludeAny) == 0 {
		p.EUExcludeAny = def.EUExcludeAny
	}
	if len(p.SectorKeywords) == 0 {
		p.SectorKeywords = def.SectorKeywords
	}
	if len(p.RegionKeywords) == 0 {
		p.RegionKeywords = def.RegionKeywords
	}
	if len(p.CompanyTypeKeywords) == 0 {
		p.CompanyTypeKeywords = def.CompanyTypeKeywords
	}
	if len(p.ExcludeAny) == 0 {
		p.ExcludeAny = def.ExcludeAny
	}
}

func defaultPolicy() Policy {
	return Policy{
		RelevanceAny: []string{
			"subvención", "ayuda", "convocatoria", "financiación",
			"programa", "incentivo", "apoyo", "fomento",
			// the EU portal publishes in English
			"grant", "funding", "call for proposals",
		},
		HighValueAny:  []string{"subvención", "ayuda", "convocatoria"},
		InnovationAny: []string{"i+d+i", "innovación", "tecnológico", "neotec", "eureka", "innterconecta"},
		MediumValueAny: []string{
			"programa", "ayuda", "subvención", "financiación",
		},
		LowValueAny: []string{"modificación", "corrección", "prórroga"},

		HighValueBonus:   2,
		InnovationBonus:  2,
		MediumValueBonus: 1,
		LowValuePenalty:  2,

		EUAny:        []string{"unión europea", "ue ", "europa", "european", "horizon"},
		EUExcludeAny: []string{"unión europea", "ue ", "europa ", "european"},

		SectorKeywords: map[string][]string{
			"Technology":   {"tecnología", "tecnológico", "digital", "innovación", "i+d+i", "startup", "tic"},
			"Energy":       {"energía", "energético", "renovable", "eficiencia energética", "autoconsumo"},
			"Industry":     {"industria", "industrial", "manufactura", "producción"},
			"Agriculture":  {"agricultura", "agrícola", "rural", "ganadero", "agrario"},
			"Commerce":     {"comercio", "comercial", "exportación", "internacionalización"},
			"Services":     {"servicios", "terciario", "turismo", "hostelería"},
			"Construction": {"construcción", "vivienda", "edificación", "obra"},
			"Health":       {"salud", "sanitario", "médico", "farmacéutico"},
			"Tourism":      {"turismo", "turístico", "hostelería", "restauración"},
			"Education":    {"educación", "educativo", "formación", "universidad"},
			"Transport":    {"transporte", "logística", "movilidad", "infraestructura"},
		},

		RegionKeywords: map[string][]string{
			"Andalucía":          {"andalucia", "sevilla", "córdoba", "granada", "málaga", "cádiz", "huelva", "jaén", "almería"},
			"Cataluña":           {"cataluña", "catalunya", "barcelona", "girona", "lleida", "tarragona"},
			"Madrid":             {"madrid", "comunidad de madrid"},
			"Valencia":           {"valencia", "castellón", "alicante", "comunidad valenciana"},
			"Galicia":            {"galicia", "coruña", "lugo", "ourense", "pontevedra"},
			"País Vasco":         {"país vasco", "euskadi", "bilbao", "vitoria", "san sebastián"},
			"Aragón":             {"aragón", "zaragoza", "huesca", "teruel"},
			"Asturias":           {"asturias", "oviedo"},
			"Cantabria":          {"cantabria", "santander"},
			"Castilla-La Mancha": {"castilla la mancha", "toledo", "ciudad real", "albacete", "cuenca", "guadalajara"},
			"Castilla y León":    {"castilla y león", "valladolid", "salamanca", "león", "burgos", "zamora", "palencia", "ávila", "segovia", "soria"},
			"Extremadura":        {"extremadura", "badajoz", "cáceres"},
			"Islas Baleares":     {"baleares", "mallorca", "menorca", "ibiza", "formentera"},
			"Canarias":           {"canarias", "las palmas", "santa cruz de tenerife", "tenerife", "gran canaria"},
			"La Rioja":           {"la rioja", "logroño"},
			"Murcia":             {"murcia", "región de murcia", "cartagena"},
			"Navarra":            {"navarra", "pamplona"},
			"Ceuta":              {"ceuta"},
			"Melilla":            {"melilla"},
		},

		CompanyTypeKeywords: map[string][]string{
			"SME":             {"pyme", "pequeña", "mediana"},
			"Startup":         {"startup", "nueva empresa"},
			"Large company":   {"gran empresa", "grande"},
			"Research center": {"universidad", "centro de investigación"},
		},

		ExcludeAny: []string{
			"contacto", "aviso legal", "cookies", "mapa", "búsqueda",
			"newsletter", "rss", "imprimir", "pdf", "descargar",
		},
	}
}
