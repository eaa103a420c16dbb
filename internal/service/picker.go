package service

import (
	"context"
	"strings"
	"sync"

	"onboarding_portal/internal/model"
	"onboarding_portal/pkg/logger"

	"go.uber.org/zap"
)

// Picker attaches library files to a node by id. The selection itself is owned
// by whoever created the picker: it is read through selected and every change
// is reported through onChange as the full new set.
type Picker struct {
	mu       sync.Mutex
	catalog  FileCatalog
	files    []model.KnowledgeFile
	fetched  bool
	open     bool
	filter   string
	selected func() []string
	onChange func([]string)
}

func NewPicker(catalog FileCatalog, selected func() []string, onChange func([]string)) *Picker {
	return &Picker{
		catalog:  catalog,
		selected: selected,
		onChange: onChange,
	}
}

// NewStandalonePicker keeps its own selection, starting from initial.
func NewStandalonePicker(catalog FileCatalog, initial []string, onChange func([]string)) *Picker {
	var mu sync.Mutex
	current := append([]string{}, initial...)
	return NewPicker(catalog,
		func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string{}, current...)
		},
		func(ids []string) {
			mu.Lock()
			current = append([]string{}, ids...)
			mu.Unlock()
			if onChange != nil {
				onChange(ids)
			}
		},
	)
}

// Expand opens the picker. The first expansion loads the catalog; later ones
// never refetch, even when that first load failed.
func (p *Picker) Expand(ctx context.Context) {
	p.mu.Lock()
	p.open = true
	if p.fetched {
		p.mu.Unlock()
		return
	}
	p.fetched = true
	p.mu.Unlock()

	files, err := p.catalog.ListFiles(ctx)
	if err != nil {
		logger.Component("picker").Warn("failed to load file catalog", zap.Error(err))
		return
	}

	p.mu.Lock()
	p.files = files
	p.mu.Unlock()
}

func (p *Picker) Collapse() {
	p.mu.Lock()
	p.open = false
	p.mu.Unlock()
}

func (p *Picker) Toggle(ctx context.Context) {
	p.mu.Lock()
	open := p.open
	p.mu.Unlock()

	if open {
		p.Collapse()
		return
	}
	p.Expand(ctx)
}

func (p *Picker) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// ToggleFile adds id when absent and removes it otherwise.
func (p *Picker) ToggleFile(id string) []string {
	current := p.Selected()

	next := make([]string, 0, len(current)+1)
	found := false
	for _, s := range current {
		if s == id {
			found = true
			continue
		}
		next = append(next, s)
	}
	if !found {
		next = append(next, id)
	}

	if p.onChange != nil {
		p.onChange(append([]string{}, next...))
	}
	return next
}

func (p *Picker) Selected() []string {
	if p.selected == nil {
		return []string{}
	}
	ids := p.selected()
	if ids == nil {
		return []string{}
	}
	return ids
}

func (p *Picker) SetFilter(text string) {
	p.mu.Lock()
	p.filter = text
	p.mu.Unlock()
}

// Visible lists catalog entries whose name contains the filter, ignoring case.
func (p *Picker) Visible() []model.KnowledgeFile {
	p.mu.Lock()
	defer p.mu.Unlock()

	needle := strings.ToLower(p.filter)
	out := make([]model.KnowledgeFile, 0, len(p.files))
	for _, f := range p.files {
		if strings.Contains(strings.ToLower(f.Name), needle) {
			out = append(out, f)
		}
	}
	return out
}

// SelectedFiles lists catalog entries that are currently selected. Ids that
// are not in the catalog are left out.
func (p *Picker) SelectedFiles() []model.KnowledgeFile {
	selected := make(map[string]struct{})
	for _, id := range p.Selected() {
		selected[id] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.KnowledgeFile, 0, len(selected))
	for _, f := range p.files {
		if _, ok := selected[f.ID]; ok {
			out = append(out, f)
		}
	}
	return out
}

type PickerView struct {
	Open     bool                  `json:"open"`
	Filter   string                `json:"filter"`
	Files    []model.KnowledgeFile `json:"files"`
	Selected []string              `json:"selected"`
	Chips    []model.KnowledgeFile `json:"chips"`
}

func (p *Picker) View() PickerView {
	p.mu.Lock()
	open, filter := p.open, p.filter
	p.mu.Unlock()

	return PickerView{
		Open:     open,
		Filter:   filter,
		Files:    p.Visible(),
		Selected: p.Selected(),
		Chips:    p.SelectedFiles(),
	}
}
