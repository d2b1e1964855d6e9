package codec

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLCodec writes the snapshot as a YAML document
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of the output
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlSnapshot is the on-disk layout, grouped by adapter
type yamlSnapshot struct {
	GeneratedAt string        `yaml:"generated_at"`
	Base        string        `yaml:"base"`
	Adapters    []yamlAdapter `yaml:"adapters"`
}

type yamlAdapter struct {
	ID        uint16         `yaml:"id"`
	Frontends []yamlFrontend `yaml:"frontends"`
}

type yamlFrontend struct {
	Index     uint16 `yaml:"index"`
	Frontend  string `yaml:"frontend"`
	Demux     string `yaml:"demux"`
	DVR       string `yaml:"dvr"`
	FirstSeen string `yaml:"first_seen"`
	Channel   string `yaml:"channel,omitempty"`
}

// Export writes the snapshot as YAML
func (c *YAMLCodec) Export(s *Snapshot, w io.Writer) error {
	ys := yamlSnapshot{
		GeneratedAt: s.GeneratedAt.Format(time.RFC3339),
		Base:        s.Base,
		Adapters:    []yamlAdapter{},
	}

	// Frontends are ordered by adapter, so each adapter is one run
	for _, fe := range s.Frontends {
		n := len(ys.Adapters)
		if n == 0 || ys.Adapters[n-1].ID != fe.ID.Adapter {
			ys.Adapters = append(ys.Adapters, yamlAdapter{ID: fe.ID.Adapter})
			n++
		}
		ys.Adapters[n-1].Frontends = append(ys.Adapters[n-1].Frontends, yamlFrontend{
			Index:     fe.ID.Frontend,
			Frontend:  fe.Paths.Frontend,
			Demux:     fe.Paths.Demux,
			DVR:       fe.Paths.DVR,
			FirstSeen: fe.FirstSeen.UTC().Format(time.RFC3339),
			Channel:   fe.Channel,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(ys); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
