package batch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan lists models to quantize in one invocation.
//
//	models:
//	  - id: microsoft/Phi-3.5-mini-instruct
//	  - id: microsoft/Phi-3.5-vision-instruct
//	    filename: phi3.5-vision-instruct-###.uqff
//	    vision: true
//	    arch: phi3v
type Plan struct {
	Models []PlanModel `yaml:"models"`
}

type PlanModel struct {
	ID       string `yaml:"id"`
	Filename string `yaml:"filename,omitempty"`
	Vision   bool   `yaml:"vision,omitempty"`
	Arch     string `yaml:"arch,omitempty"`
}

func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if len(p.Models) == 0 {
		return nil, fmt.Errorf("plan %s lists no models", path)
	}
	for i, m := range p.Models {
		if strings.TrimSpace(m.ID) == "" {
			return nil, fmt.Errorf("plan %s: models[%d] has no id", path, i)
		}
		if m.Arch != "" && !m.Vision {
			return nil, fmt.Errorf("plan %s: %s sets arch without vision", path, m.ID)
		}
	}
	return &p, nil
}
