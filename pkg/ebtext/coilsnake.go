package ebtext

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// The CoilSnake table files that can carry dialogue pointers, and the
// field names holding them. map_doors.yml nests entries one level
// deeper than the rest.
var coilSnakeFiles = []string{
	"attract_mode_txt.yml",
	"battle_action_table.yml",
	"enemy_configuration_table.yml",
	"map_doors.yml",
	"item_configuration_table.yml",
	"npc_config_table.yml",
	"psi_ability_table.yml",
	"telephone_contacts_table.yml",
	"timed_delivery_table.yml",
}

var pointerFieldKeys = []string{
	"Text Address",
	"Death Text Pointer",
	"Encounter Text Pointer",
	"Help Text Pointer",
	"Text Pointer 1",
	"Text Pointer 2",
	"Text Pointer",
	"Delivery Failure Text Pointer",
	"Delivery Success Text Pointer",
	"Pointer",
}

const doorPointerKey = "Text Pointer"

// Project is an on-disk CoilSnake project whose tables supply extra
// pointer candidates and receive the resolved labels back.
type Project struct {
	Dir string
}

// OpenProject validates the project directory. A missing Project.snake
// fails here, before any decoding work is spent.
func OpenProject(dir string) (*Project, error) {
	marker := filepath.Join(dir, "Project.snake")
	if _, err := os.Stat(marker); err != nil {
		return nil, fmt.Errorf("invalid CoilSnake project: %w", err)
	}
	return &Project{Dir: dir}, nil
}

// parsePointerField reads a pointer field value: either "$c57122" or an
// already-labelled "data_NN.l_0xc57122" form. The second return is true
// for the literal dollar form, which is subject to range filtering.
func parsePointerField(s string) (int, bool, error) {
	if strings.HasPrefix(s, "$") {
		v, err := strconv.ParseInt(s[1:], 16, 64)
		if err == nil {
			return int(v), true, nil
		}
	}
	if len(s) > 12 {
		v, err := strconv.ParseInt(s[12:], 16, 64)
		if err == nil {
			return int(v), false, nil
		}
	}
	return 0, false, fmt.Errorf("unparseable pointer field %q", s)
}

// PointerCandidates harvests dialogue addresses from the project
// tables. Literal pointers are kept only when they sit above the text
// bank base and are not already block starts.
func (p *Project) PointerCandidates(isBlock func(int) bool) ([]int, error) {
	var out []int
	for _, name := range coilSnakeFiles {
		doc, err := p.load(name)
		if err != nil {
			return nil, err
		}
		err = eachPointerField(doc, name, func(field *yaml.Node) error {
			addr, literal, err := parsePointerField(field.Value)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if literal && (addr <= snesBase || isBlock(addr)) {
				return nil
			}
			out = append(out, addr)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	log.Infof("collected %d pointer candidates from project tables", len(out))
	return out, nil
}

// RewritePointers writes every pointer field back as its resolved
// page-qualified label, and re-renders Event Flag values in hex the way
// the project tooling expects.
func (p *Project) RewritePointers(label func(addr int) (string, error)) error {
	log.Info("modifying CoilSnake project")
	for _, name := range coilSnakeFiles {
		doc, err := p.load(name)
		if err != nil {
			return err
		}
		err = eachPointerField(doc, name, func(field *yaml.Node) error {
			addr, literal, err := parsePointerField(field.Value)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if literal && addr < snesBase {
				return nil
			}
			l, err := label(addr)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			field.Value = l
			field.Tag = "!!str"
			field.Style = 0
			return nil
		})
		if err != nil {
			return err
		}
		hexEventFlags(doc)
		if err := p.store(name, doc); err != nil {
			return err
		}
	}
	return nil
}

func (p *Project) load(name string) (*yaml.Node, error) {
	data, err := os.ReadFile(filepath.Join(p.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading project table: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return &doc, nil
}

func (p *Project) store(name string, doc *yaml.Node) error {
	f, err := os.Create(filepath.Join(p.Dir, name))
	if err != nil {
		return fmt.Errorf("writing project table: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}

// eachPointerField visits every pointer-carrying scalar in a table
// document. Entries are keyed maps; map_doors.yml nests per-area
// sequences of door records.
func eachPointerField(doc *yaml.Node, name string, visit func(*yaml.Node) error) error {
	root := documentRoot(doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 1; i < len(root.Content); i += 2 {
		entry := root.Content[i]
		if name != "map_doors.yml" {
			if entry.Kind != yaml.MappingNode {
				continue
			}
			for _, key := range pointerFieldKeys {
				if field := mapValue(entry, key); field != nil {
					if err := visit(field); err != nil {
						return err
					}
				}
			}
			continue
		}
		if entry.Kind != yaml.MappingNode {
			continue
		}
		for j := 1; j < len(entry.Content); j += 2 {
			doors := entry.Content[j]
			if doors.Kind != yaml.SequenceNode {
				continue
			}
			for _, door := range doors.Content {
				if door.Kind != yaml.MappingNode {
					continue
				}
				if field := mapValue(door, doorPointerKey); field != nil {
					if err := visit(field); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// hexEventFlags rewrites decimal Event Flag scalars as hex literals.
func hexEventFlags(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Value == "Event Flag" && v.Kind == yaml.ScalarNode {
				if flag, err := strconv.Atoi(v.Value); err == nil {
					v.Value = fmt.Sprintf("%#x", flag)
				}
			}
		}
	}
	for _, c := range n.Content {
		hexEventFlags(c)
	}
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

func mapValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
