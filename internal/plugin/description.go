package plugin

import (
	"github.com/smykla-skalski/plughost/pkg/logger"
)

// Description is the diagnostic dump of a plugin. It is meant for people, not for
// automated parsing.
type Description struct {
	Name         string          `json:"name"                    yaml:"name"`
	Location     string          `json:"location"                yaml:"location"`
	Kind         string          `json:"kind"                    yaml:"kind"`
	Role         string          `json:"role"                    yaml:"role"`
	Vendor       string          `json:"vendor,omitempty"        yaml:"vendor,omitempty"`
	Product      string          `json:"product,omitempty"       yaml:"product,omitempty"`
	Version      string          `json:"version,omitempty"       yaml:"version,omitempty"`
	UniqueID     string          `json:"unique_id,omitempty"     yaml:"unique_id,omitempty"`
	Category     string          `json:"category,omitempty"      yaml:"category,omitempty"`
	Inputs       int             `json:"inputs"                  yaml:"inputs"`
	Outputs      int             `json:"outputs"                 yaml:"outputs"`
	Latency      int             `json:"latency,omitempty"       yaml:"latency,omitempty"`
	Flags        []string        `json:"flags,omitempty"         yaml:"flags,omitempty"`
	Parameters   []ParameterInfo `json:"parameters,omitempty"    yaml:"parameters,omitempty"`
	Programs     []ProgramInfo   `json:"programs,omitempty"      yaml:"programs,omitempty"`
	SubPlugins   []SubPlugin     `json:"sub_plugins,omitempty"   yaml:"sub_plugins,omitempty"`
	Capabilities []Capability    `json:"capabilities,omitempty"  yaml:"capabilities,omitempty"`
}

// ParameterInfo describes one parameter and its current value.
type ParameterInfo struct {
	Index   int     `json:"index"           yaml:"index"`
	Name    string  `json:"name"            yaml:"name"`
	Value   float32 `json:"value"           yaml:"value"`
	Display string  `json:"display"         yaml:"display"`
	Label   string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// ProgramInfo describes one program.
type ProgramInfo struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name"  yaml:"name"`
}

// SubPlugin is one plugin hosted inside a shell plugin.
type SubPlugin struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Capability is the answer to one capability query.
type Capability struct {
	Name    string `json:"name"    yaml:"name"`
	Support string `json:"support" yaml:"support"`
}

// LogDescription writes d to log at info level, one line per entry.
func LogDescription(log logger.Logger, d Description) {
	log = log.With("plugin", d.Name)

	log.Info("information",
		"kind", d.Kind,
		"role", d.Role,
		"location", d.Location,
	)

	if d.Vendor != "" || d.Product != "" {
		log.Info("vendor",
			"vendor", d.Vendor,
			"product", d.Product,
			"version", d.Version,
		)
	}

	if d.UniqueID != "" {
		log.Info("identity", "unique_id", d.UniqueID, "category", d.Category)
	}

	log.Info("channels",
		"inputs", d.Inputs,
		"outputs", d.Outputs,
		"latency", d.Latency,
	)

	for _, flag := range d.Flags {
		log.Info("flag", "name", flag)
	}

	for _, p := range d.Parameters {
		log.Info("parameter",
			"index", p.Index,
			"name", p.Name,
			"value", p.Value,
			"display", p.Display,
			"label", p.Label,
		)
	}

	for _, p := range d.Programs {
		log.Info("program", "index", p.Index, "name", p.Name)
	}

	for _, s := range d.SubPlugins {
		log.Info("sub-plugin", "id", s.ID, "name", s.Name)
	}

	for _, c := range d.Capabilities {
		log.Info("capability", "name", c.Name, "support", c.Support)
	}
}
