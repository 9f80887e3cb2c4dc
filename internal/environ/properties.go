package environ

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/srlehn/drmfb/internal/propkeys"
)

// Properties is a key/value configuration source. Environment variables
// are stored under propkeys.EnvPrefix.
type Properties interface {
	Enver
	PropertyExporter
	Property(key string) (string, bool)
	SetProperty(key, value string)
	MergeProperties(PropertyExporter)
	String() string
}

type Enver interface {
	Environ() []string
	LookupEnv(v string) (string, bool)
	Getenv(string) string
}

type PropertyExporter interface {
	ExportProperties() map[string]string
}

var _ Properties = (*propertiesGeneric)(nil)

type propertiesGeneric struct {
	mu         sync.Mutex
	properties map[string]string
}

func NewProperties() Properties {
	return &propertiesGeneric{properties: make(map[string]string)}
}

func CloneProperties(pr PropertyExporter) Properties {
	if pr == nil {
		return nil
	}
	p := &propertiesGeneric{properties: make(map[string]string)}
	p.MergeProperties(pr)
	return p
}

func (p *propertiesGeneric) Property(key string) (string, bool) {
	if p == nil {
		return ``, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.properties[key]
	return v, ok
}

func (p *propertiesGeneric) SetProperty(key, value string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.properties == nil {
		p.properties = make(map[string]string)
	}
	p.properties[key] = value
}

// ExportProperties returns a copy of all properties.
func (p *propertiesGeneric) ExportProperties() map[string]string {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.properties)
}

func (p *propertiesGeneric) LookupEnv(v string) (string, bool) {
	return p.Property(propkeys.EnvPrefix + v)
}

func (p *propertiesGeneric) Getenv(v string) string {
	s, _ := p.Property(propkeys.EnvPrefix + v)
	return s
}

func (p *propertiesGeneric) Environ() []string {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var env []string
	for _, k := range slices.Sorted(maps.Keys(p.properties)) {
		after, found := strings.CutPrefix(k, propkeys.EnvPrefix)
		if !found {
			continue
		}
		env = append(env, after+`=`+p.properties[k])
	}
	return env
}

// MergeProperties copies all properties of pr into p,
// overwriting existing keys.
func (p *propertiesGeneric) MergeProperties(pr PropertyExporter) {
	if p == nil || pr == nil {
		return
	}
	m := pr.ExportProperties()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.properties == nil {
		p.properties = make(map[string]string)
	}
	maps.Copy(p.properties, m)
}

func (p *propertiesGeneric) String() string {
	if p == nil {
		return `<nil>`
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s := &strings.Builder{}
	_, _ = s.WriteString("properties: {\n")
	for _, k := range slices.Sorted(maps.Keys(p.properties)) {
		_, _ = s.WriteString(fmt.Sprintf("\t\"%s\": %q\n", k, p.properties[k]))
	}
	_, _ = s.WriteString("}")
	return s.String()
}
