package tui

import (
	"strconv"

	"github.com/minijira/issue-tracker/internal/api/dto"
	"github.com/minijira/issue-tracker/internal/domain"
)

// Labels of the catch-all options.
const (
	LabelAny        = "Any"
	LabelAnyone     = "Anyone"
	LabelUnassigned = "Unassigned"
	LabelNone       = "None"
)

type option struct {
	label string
	value string
}

// choice is a cycling select. The empty value means "no constraint".
type choice struct {
	name    string
	options []option
	index   int
}

func (c *choice) next() {
	if len(c.options) > 0 {
		c.index = (c.index + 1) % len(c.options)
	}
}

func (c *choice) prev() {
	if len(c.options) > 0 {
		c.index = (c.index - 1 + len(c.options)) % len(c.options)
	}
}

func (c choice) value() string {
	if c.index < 0 || c.index >= len(c.options) {
		return ""
	}
	return c.options[c.index].value
}

func (c choice) label() string {
	if c.index < 0 || c.index >= len(c.options) {
		return ""
	}
	return c.options[c.index].label
}

// selectValue moves to the option carrying value, falling back to the first.
func (c *choice) selectValue(value string) {
	c.index = 0
	for i, opt := range c.options {
		if opt.value == value {
			c.index = i
			return
		}
	}
}

// setOptions replaces the options and keeps the current value when it is
// still offered.
func (c *choice) setOptions(options []option) {
	current := c.value()
	c.options = options
	c.selectValue(current)
}

func statusOptions(first string) []option {
	opts := []option{}
	if first != "" {
		opts = append(opts, option{label: first})
	}
	for _, s := range domain.AllStatuses {
		opts = append(opts, option{label: string(s), value: string(s)})
	}
	return opts
}

func priorityOptions(first string) []option {
	opts := []option{}
	if first != "" {
		opts = append(opts, option{label: first})
	}
	for _, p := range domain.AllPriorities {
		opts = append(opts, option{label: string(p), value: string(p)})
	}
	return opts
}

// assigneeFilterOptions offers Anyone, Unassigned and every user.
func assigneeFilterOptions(users []dto.UserResponse) []option {
	opts := []option{{label: LabelAnyone}, {label: LabelUnassigned, value: dto.UnassignedSentinel}}
	return append(opts, userOptions(users)...)
}

// assigneeFormOptions offers Unassigned and every user.
func assigneeFormOptions(users []dto.UserResponse) []option {
	return append([]option{{label: LabelUnassigned}}, userOptions(users)...)
}

func userOptions(users []dto.UserResponse) []option {
	opts := make([]option, 0, len(users))
	for _, u := range users {
		opts = append(opts, option{label: u.Name, value: strconv.FormatInt(u.ID, 10)})
	}
	return opts
}

func projectOptions(first string, projects []dto.ProjectResponse) []option {
	opts := []option{{label: first}}
	for _, p := range projects {
		opts = append(opts, option{label: p.Key + " " + p.Name, value: strconv.FormatInt(p.ID, 10)})
	}
	return opts
}
