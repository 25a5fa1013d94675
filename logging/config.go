package logging

import "time"

type Config struct {
	EnabledSinks     []string       `json:"enabledSinks,omitempty" jsonschema:"description=Sinks to enable (console or json)"`
	BufferSize       int            `json:"bufferSize,omitempty"`
	MinimumSeverity  Severity       `json:"minimumSeverity,omitempty" jsonschema:"description=0 debug 1 info 2 warn 3 error"`
	Fields           map[string]any `json:"fields,omitempty"`
	JSON             JSONConfig     `json:"json,omitempty"`
	Console          ConsoleConfig  `json:"console,omitempty"`
	DropWarnInterval time.Duration  `json:"dropWarnInterval,omitempty"`
}

type JSONConfig struct {
	FilePath      string        `json:"filePath,omitempty"`
	MaxBatch      int           `json:"maxBatch,omitempty"`
	FlushInterval time.Duration `json:"flushInterval,omitempty"`
}

type ConsoleConfig struct {
	UseColor bool `json:"useColor,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			MaxBatch:      32,
			FlushInterval: 2 * time.Second,
		},
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
