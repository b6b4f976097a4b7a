// Package ocr models the block structure produced by an OCR engine and the
// traversal helpers every format parser reads from.
//
// A Document is an ordered list of Blocks. TABLE blocks reference CELL
// children; CELL blocks reference WORD or LINE children. Relationships are
// resolved by id within the same document. A reference to an id that does
// not exist contributes no text and is never an error.
package ocr

import (
	"sort"
	"strconv"
	"strings"
)

// Kind is the type of a block
type Kind string

const (
	KindLine  Kind = "LINE"
	KindTable Kind = "TABLE"
	KindCell  Kind = "CELL"
	KindWord  Kind = "WORD"
)

// HeaderRow is the row index treated as a table header
const HeaderRow = 1

// Block is one recognized fragment
type Block struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Text        string   `json:"text,omitempty"`
	RowIndex    int      `json:"row_index,omitempty"`
	ColumnIndex int      `json:"column_index,omitempty"`
	Children    []string `json:"children,omitempty"`
}

// Document is an immutable collection of blocks
type Document struct {
	Blocks []Block `json:"blocks"`

	index map[string]int
}

// NewDocument builds a document over blocks. The slice is not copied;
// callers must not mutate it afterwards.
func NewDocument(blocks []Block) *Document {
	d := &Document{Blocks: blocks}
	d.buildIndex()
	return d
}

// FromLines builds a document made only of LINE blocks
func FromLines(lines []string) *Document {
	blocks := make([]Block, 0, len(lines))
	for i, line := range lines {
		blocks = append(blocks, Block{
			ID:   lineID(i),
			Kind: KindLine,
			Text: line,
		})
	}
	return NewDocument(blocks)
}

func (d *Document) buildIndex() {
	d.index = make(map[string]int, len(d.Blocks))
	for i, b := range d.Blocks {
		if b.ID == "" {
			continue
		}
		if _, dup := d.index[b.ID]; !dup {
			d.index[b.ID] = i
		}
	}
}

// Block returns the block with the given id
func (d *Document) Block(id string) (Block, bool) {
	if d.index == nil {
		d.buildIndex()
	}
	i, ok := d.index[id]
	if !ok {
		return Block{}, false
	}
	return d.Blocks[i], true
}

// Lines returns the text of every LINE block in document order
func (d *Document) Lines() []string {
	var lines []string
	for _, b := range d.Blocks {
		if b.Kind == KindLine {
			lines = append(lines, b.Text)
		}
	}
	return lines
}

// Tables reconstructs every TABLE block in document order
func (d *Document) Tables() []Table {
	var tables []Table
	for _, b := range d.Blocks {
		if b.Kind != KindTable {
			continue
		}
		tables = append(tables, d.table(b))
	}
	return tables
}

type cellText struct {
	column int
	text   string
}

func (d *Document) table(tb Block) Table {
	byRow := make(map[int][]cellText)

	for _, childID := range tb.Children {
		cell, ok := d.Block(childID)
		if !ok || cell.Kind != KindCell {
			continue
		}
		byRow[cell.RowIndex] = append(byRow[cell.RowIndex], cellText{
			column: cell.ColumnIndex,
			text:   d.CellText(cell),
		})
	}

	rows := make(map[int][]string, len(byRow))
	for row, cells := range byRow {
		sort.SliceStable(cells, func(i, j int) bool {
			return cells[i].column < cells[j].column
		})
		texts := make([]string, len(cells))
		for i, c := range cells {
			texts[i] = c.text
		}
		rows[row] = texts
	}

	return Table{ID: tb.ID, rows: rows}
}

// CellText joins the text of every WORD/LINE descendant of a block with
// single spaces. Cycles and missing ids are ignored.
func (d *Document) CellText(b Block) string {
	var parts []string
	seen := map[string]bool{b.ID: true}
	d.collectText(b, seen, &parts)
	return strings.Join(parts, " ")
}

func (d *Document) collectText(b Block, seen map[string]bool, parts *[]string) {
	for _, childID := range b.Children {
		if seen[childID] {
			continue
		}
		seen[childID] = true

		child, ok := d.Block(childID)
		if !ok {
			continue
		}
		if child.Kind == KindWord || child.Kind == KindLine {
			if t := strings.TrimSpace(child.Text); t != "" {
				*parts = append(*parts, t)
				continue
			}
		}
		d.collectText(child, seen, parts)
	}
}

func lineID(i int) string {
	return "line-" + strconv.Itoa(i)
}
