package skill

import (
	"context"
	"strings"
	"time"
)

// paramCheck validates a skill's parameter map against its schema.
type paramCheck func(params map[string]any) bool

// Descriptor describes one catalogued skill.
type Descriptor struct {
	Name        string
	Description string
	check       paramCheck
}

func requireString(params map[string]any, key string, allowEmpty bool) bool {
	v, ok := params[key]
	if !ok {
		return false
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	if !allowEmpty && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

// Catalog is a static registry of the built-in desktop skills. It implements
// the validation half of Executor; Execute reports an ordinary failure because
// actual skill execution is provided by the automation subsystem, not by the
// planning core.
type Catalog struct {
	skills map[string]Descriptor
}

// NewCatalog returns a catalog holding the built-in skill descriptors.
func NewCatalog() *Catalog {
	c := &Catalog{skills: make(map[string]Descriptor)}

	add := func(name, description string, check paramCheck) {
		c.skills[name] = Descriptor{Name: name, Description: description, check: check}
	}

	add("open_app", "Launch an application by name", func(p map[string]any) bool {
		return requireString(p, "app_name", false)
	})
	add("focus_app", "Bring an application window to the foreground", func(p map[string]any) bool {
		return requireString(p, "app_name", false)
	})
	add("click_text", "Click on visible text on screen", func(p map[string]any) bool {
		return requireString(p, "text", false)
	})
	add("type_text", "Type text into the focused element", func(p map[string]any) bool {
		return requireString(p, "text", true)
	})
	add("save_file", "Save the current document", func(p map[string]any) bool {
		return true
	})
	add("write_text_file", "Create a text file with the given content", func(p map[string]any) bool {
		return requireString(p, "content", true)
	})
	add("press_hotkey", "Press a key combination", func(p map[string]any) bool {
		v, ok := p["keys"]
		if !ok {
			return false
		}
		switch keys := v.(type) {
		case string:
			return strings.TrimSpace(keys) != ""
		case []string:
			return len(keys) > 0
		case []any:
			return len(keys) > 0
		default:
			return false
		}
	})

	return c
}

// Execute reports the invocation as an ordinary failure: the catalog knows the
// skills but cannot run them.
func (c *Catalog) Execute(ctx context.Context, name string, params map[string]any, timeout time.Duration) (Result, error) {
	if !c.Exists(name) {
		return Result{Success: false, Error: "unknown skill: " + name}, nil
	}
	return Result{Success: false, Error: "skill execution unavailable: " + name}, nil
}

// ValidateParameters reports whether params satisfy the named skill's schema.
// Unknown skills fail validation.
func (c *Catalog) ValidateParameters(name string, params map[string]any) bool {
	d, ok := c.skills[name]
	if !ok {
		return false
	}
	if params == nil {
		params = map[string]any{}
	}
	return d.check(params)
}

// Exists reports whether the named skill is catalogued.
func (c *Catalog) Exists(name string) bool {
	_, ok := c.skills[name]
	return ok
}

// Names returns the catalogued skill names in unspecified order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.skills))
	for name := range c.skills {
		names = append(names, name)
	}
	return names
}

var _ Executor = (*Catalog)(nil)
