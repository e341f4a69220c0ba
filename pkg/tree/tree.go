// Rooted trees (dendrograms) and their Newick text form

package tree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrEmptyNewick = errors.New("empty newick string")

// Node is one vertex of a rooted tree. Leaves carry the label used for ordering,
// internal nodes only carry structure.
type Node struct {
	Name     string  `json:"name,omitempty"`
	Length   float64 `json:"length,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Leaves returns leaf names read left to right.
func (n *Node) Leaves() []string {
	if n == nil {
		return nil
	}
	leaves := make([]string, 0, 16)
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.IsLeaf() {
			leaves = append(leaves, cur.Name)
			continue
		}
		// Push right to left so the leftmost child is visited first.
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return leaves
}

// String renders the tree in Newick format, terminated by ';'.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	sb.WriteByte(';')
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if !n.IsLeaf() {
		sb.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			c.write(sb)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(quoteLabel(n.Name))
	if n.Length != 0 {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(n.Length, 'g', -1, 64))
	}
}

func quoteLabel(label string) string {
	if strings.ContainsAny(label, "(),:;[]' \t") {
		return "'" + strings.ReplaceAll(label, "'", "''") + "'"
	}
	return label
}

// ParseNewick parses a single Newick tree. Comments in square brackets are skipped.
func ParseNewick(input string) (*Node, error) {
	p := &newickParser{src: strings.TrimSpace(input)}
	if p.src == "" {
		return nil, ErrEmptyNewick
	}

	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("newick: unexpected %q at offset %d", p.src[p.pos], p.pos)
	}
	return root, nil
}

type newickParser struct {
	src string
	pos int
}

func (p *newickParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		case '[':
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 1
		default:
			return
		}
	}
}

func (p *newickParser) parseNode() (*Node, error) {
	p.skipSpace()
	node := &Node{}

	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		p.pos++
		for {
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)

			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, errors.New("newick: unbalanced parentheses")
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("newick: unexpected %q at offset %d", p.src[p.pos], p.pos)
		}
	}

	name, err := p.parseLabel()
	if err != nil {
		return nil, err
	}
	node.Name = name

	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
		p.skipSpace()
		start := p.pos
		for p.pos < len(p.src) && strings.IndexByte("(),;[ \t\n\r", p.src[p.pos]) < 0 {
			p.pos++
		}
		length, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, fmt.Errorf("newick: branch length at offset %d: %w", start, err)
		}
		node.Length = length
	}

	return node, nil
}

func (p *newickParser) parseLabel() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return "", nil
	}

	if p.src[p.pos] == '\'' {
		var sb strings.Builder
		p.pos++
		for p.pos < len(p.src) {
			c := p.src[p.pos]
			if c == '\'' {
				// '' is an escaped quote
				if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
					sb.WriteByte('\'')
					p.pos += 2
					continue
				}
				p.pos++
				return sb.String(), nil
			}
			sb.WriteByte(c)
			p.pos++
		}
		return "", errors.New("newick: unterminated quoted label")
	}

	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("(),:;[", p.src[p.pos]) < 0 {
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos]), nil
}
