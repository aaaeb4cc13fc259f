package modelcard

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TopologyUnreadable replaces the body of a topology file that could not be read.
const TopologyUnreadable = "<unable to read topology file>"

type frontmatter struct {
	Tags              []string `yaml:"tags"`
	BaseModel         string   `yaml:"base_model"`
	BaseModelRelation string   `yaml:"base_model_relation"`
}

// Card accumulates a model card. Sections are appended in call order and
// never rewritten.
type Card struct {
	b strings.Builder
}

// Header writes the YAML frontmatter and title.
func (c *Card) Header(baseModel string) error {
	fm, err := yaml.Marshal(frontmatter{
		Tags:              []string{"uqff", "mistral.rs"},
		BaseModel:         baseModel,
		BaseModelRelation: "quantized",
	})
	if err != nil {
		return err
	}
	c.b.WriteString("---\n")
	c.b.Write(fm)
	c.b.WriteString("---\n\n")
	c.b.WriteString("<!-- Autogenerated from user input. -->\n\n")
	fmt.Fprintf(&c.b, "# `%s`, UQFF quantization\n\n", baseModel)
	return nil
}

// Description writes the fixed introduction.
func (c *Card) Description() {
	c.b.WriteString(`Run with [mistral.rs](https://github.com/EricLBuehler/mistral.rs). Documentation: [UQFF docs](https://github.com/EricLBuehler/mistral.rs/blob/master/docs/UQFF.md).

1) **Flexible** 🌀: Multiple quantization formats in *one* file format with *one* framework to run them all.
2) **Reliable** 🔒: Compatibility ensured with *embedded* and *checked* semantic versioning information from day 1.
3) **Easy** 🤗: Download UQFF models *easily* and *quickly* from Hugging Face, or use a local file.
4) **Customizable** 🛠️: Make and publish your own UQFF files in minutes.

`)
}

// BeginExamples writes the examples heading and table header.
func (c *Card) BeginExamples() {
	c.b.WriteString("## Examples\n")
	c.b.WriteString("|Quantization type(s)|Example|\n")
	c.b.WriteString("|--|--|\n")
}

// ExampleRow appends one table row. Multi-scheme rows point the reader at
// the topology appendix.
func (c *Card) ExampleRow(labels []string, multi bool, command string) {
	cell := strings.Join(labels, ",")
	if multi {
		cell += " (see topology for this file)"
	}
	fmt.Fprintf(&c.b, "|%s|`%s`|\n", cell, command)
}

// Topologies appends each topology as a fenced YAML block labeled with the
// file it belongs to. Nothing is written for an empty list.
func (c *Card) Topologies(records []TopologyRecord, bodies []string) {
	if len(records) == 0 {
		return
	}
	c.b.WriteString("\n## Topologies\n")
	c.b.WriteString("**The following model topologies correspond to the UQFF files above.**\n")
	for i, r := range records {
		fmt.Fprintf(&c.b, "\n### `%s`\n", r.File)
		c.b.WriteString("```yml\n")
		body := bodies[i]
		c.b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			c.b.WriteByte('\n')
		}
		c.b.WriteString("```\n")
	}
}

func (c *Card) String() string { return c.b.String() }

// ExampleCommand is the mistral.rs invocation shown for an artifact.
func ExampleCommand(displayID, file string, vision bool) string {
	kind := "plain"
	if vision {
		kind = "vision-plain"
	}
	return fmt.Sprintf("./mistralrs-server -i %s -m %s --from-uqff %s", kind, displayID, file)
}
