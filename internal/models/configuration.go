package models

// Configuration holds the optional content blocks of a recitation. The
// central mystery block is always present and has no toggle.
type Configuration struct {
	Creed          bool `json:"creed" yaml:"creed"`
	Visita         bool `json:"visita" yaml:"visita"`
	InitialPrayers bool `json:"initial_prayers" yaml:"initial_prayers"`
	IntroPrayers   bool `json:"intro_prayers" yaml:"intro_prayers"`
	Trinity        bool `json:"trinity" yaml:"trinity"`
	Litanies       bool `json:"litanies" yaml:"litanies"`
	FinalPrayers   bool `json:"final_prayers" yaml:"final_prayers"`
	Petitions      bool `json:"petitions" yaml:"petitions"`
}

// DefaultConfiguration enables every optional block except the creed.
func DefaultConfiguration() Configuration {
	return Configuration{
		Creed:          false,
		Visita:         true,
		InitialPrayers: true,
		IntroPrayers:   true,
		Trinity:        true,
		Litanies:       true,
		FinalPrayers:   true,
		Petitions:      true,
	}
}

// ConfigurationOption describes one toggle for editors and listings.
type ConfigurationOption struct {
	Key   string
	Label string
	Get   func(Configuration) bool
	Set   func(*Configuration, bool)
}

// ConfigurationOptions lists the toggles in recitation order.
func ConfigurationOptions() []ConfigurationOption {
	return []ConfigurationOption{
		{"creed", "Credo",
			func(c Configuration) bool { return c.Creed },
			func(c *Configuration, v bool) { c.Creed = v }},
		{"visita", "La Visita",
			func(c Configuration) bool { return c.Visita },
			func(c *Configuration, v bool) { c.Visita = v }},
		{"initial_prayers", "Rezos Iniciales",
			func(c Configuration) bool { return c.InitialPrayers },
			func(c *Configuration, v bool) { c.InitialPrayers = v }},
		{"intro_prayers", "Introducción a los Misterios",
			func(c Configuration) bool { return c.IntroPrayers },
			func(c *Configuration, v bool) { c.IntroPrayers = v }},
		{"trinity", "3 Avemarías (Trinidad)",
			func(c Configuration) bool { return c.Trinity },
			func(c *Configuration, v bool) { c.Trinity = v }},
		{"litanies", "Letanías",
			func(c Configuration) bool { return c.Litanies },
			func(c *Configuration, v bool) { c.Litanies = v }},
		{"final_prayers", "Oración Final (Lauretanas)",
			func(c Configuration) bool { return c.FinalPrayers },
			func(c *Configuration, v bool) { c.FinalPrayers = v }},
		{"petitions", "Peticiones Finales",
			func(c Configuration) bool { return c.Petitions },
			func(c *Configuration, v bool) { c.Petitions = v }},
	}
}

// EnabledKeys returns the keys of the enabled toggles.
func (c Configuration) EnabledKeys() []string {
	var keys []string
	for _, opt := range ConfigurationOptions() {
		if opt.Get(c) {
			keys = append(keys, opt.Key)
		}
	}
	return keys
}

// SetOption flips a toggle by key.
func (c *Configuration) SetOption(key string, value bool) error {
	for _, opt := range ConfigurationOptions() {
		if opt.Key == key {
			opt.Set(c, value)
			return nil
		}
	}
	validation := &ValidationErrors{}
	validation.AddMessage(key, "unknown configuration option")
	return validation.Err()
}
