package request

import "github.com/yumyai/panva/pkg/model"

type DragStartRequest struct {
	Position   int  `json:"position"`
	Cumulative bool `json:"cumulative"`
}

type DragUpdateRequest struct {
	Position int `json:"position"`
}

// DragEndRequest ends a drag; Position optionally applies a last update.
type DragEndRequest struct {
	Position *int `json:"position"`
}

type GroupCreateRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsCollapsed bool   `json:"isCollapsed"`
	IsColorized bool   `json:"isColorized"`
}

func (r GroupCreateRequest) Attributes() model.GroupAttributes {
	return model.GroupAttributes{
		Name:        r.Name,
		Color:       r.Color,
		IsCollapsed: r.IsCollapsed,
		IsColorized: r.IsColorized,
	}
}

type GroupPatchRequest struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	IsCollapsed *bool   `json:"isCollapsed"`
	IsColorized *bool   `json:"isColorized"`
}

func (r GroupPatchRequest) Patch() model.GroupPatch {
	return model.GroupPatch{
		Name:        r.Name,
		Color:       r.Color,
		IsCollapsed: r.IsCollapsed,
		IsColorized: r.IsColorized,
	}
}

type FiltersRequest struct {
	Filters []model.MetadataFilter `json:"filters"`
}

type PositionRangeRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CustomDendrogramRequest lists the positions to cluster on; empty means the
// currently filtered positions.
type CustomDendrogramRequest struct {
	Positions []int `json:"positions"`
}
