// internal/infra/messages/messages.go
package messages

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/trigger"
)

//go:embed defaults.yaml
var defaultTemplates []byte

// Templates is the YAML document holding the raw message templates.
type Templates struct {
	Reminder string `yaml:"reminder"`
	Urgent   string `yaml:"urgent"`
}

// Renderer turns trigger data into message text.
type Renderer struct {
	reminder *template.Template
	urgent   *template.Template
}

// Default returns a Renderer over the built-in templates.
func Default() (*Renderer, error) {
	return Parse(defaultTemplates)
}

// Load reads templates from path on fs. An empty path selects the built-in
// templates.
func Load(fs afero.Fs, path string) (*Renderer, error) {
	if path == "" {
		return Default()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse compiles a YAML templates document. Both templates are required.
func Parse(data []byte) (*Renderer, error) {
	var raw Templates
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode message templates: %w", err)
	}
	if raw.Reminder == "" {
		return nil, fmt.Errorf("message template %q is missing", "reminder")
	}
	if raw.Urgent == "" {
		return nil, fmt.Errorf("message template %q is missing", "urgent")
	}

	reminder, err := template.New("reminder").Option("missingkey=error").Parse(raw.Reminder)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reminder template: %w", err)
	}
	urgent, err := template.New("urgent").Option("missingkey=error").Parse(raw.Urgent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse urgent template: %w", err)
	}
	return &Renderer{reminder: reminder, urgent: urgent}, nil
}

// Reminder renders the "ordering is open" announcement for a delivery day.
func (r *Renderer) Reminder(info trigger.DeliveryInfo) (string, error) {
	return execute(r.reminder, info)
}

// Urgent renders the cutoff warning.
func (r *Renderer) Urgent() (string, error) {
	return execute(r.urgent, nil)
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s message: %w", t.Name(), err)
	}
	return buf.String(), nil
}
