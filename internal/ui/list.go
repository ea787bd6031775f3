package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/flowdj/internal/models"
)

var _ list.Item = flowItem{}

// flowItem wraps [models.Flow] to implement [list.Item].
type flowItem struct {
	flow models.Flow
}

func (i flowItem) FilterValue() string { return i.flow.Name }
func (i flowItem) Title() string       { return i.flow.Name }
func (i flowItem) Description() string {
	if !i.flow.Active {
		return "inactive"
	}
	desc := "active"
	if len(i.flow.Keywords) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.flow.Keywords, ", "))
	}
	return desc
}
