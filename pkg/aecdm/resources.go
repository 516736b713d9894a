package aecdm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/jsonutil"
)

// Hub is an ACC hub visible to the token's user.
type Hub struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project is an ACC project inside a hub.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ElementGroup is a design (model file) inside a project.
type ElementGroup struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	FileVersionURN string `json:"fileVersionUrn,omitempty"`
}

// Element is a flattened element record.
type Element struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	ExternalID string         `json:"externalId,omitempty"`
	Category   string         `json:"category,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// GetHubs lists the hubs the token can see.
func (c *Client) GetHubs(ctx context.Context) ([]Hub, error) {
	hubs, err := collectPages[Hub](ctx, c, hubsQuery, "hubs", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list hubs: %w", err)
	}
	c.logger.Debug("Listed hubs", zap.Int("count", len(hubs)))
	return hubs, nil
}

// GetProjects lists the projects in a hub.
func (c *Client) GetProjects(ctx context.Context, hubID string) ([]Project, error) {
	if err := requireID("hubId", hubID); err != nil {
		return nil, err
	}
	projects, err := collectPages[Project](ctx, c, projectsQuery, "projects", map[string]any{"hubId": hubID})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for hub %s: %w", hubID, err)
	}
	return projects, nil
}

type rawElementGroup struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	AlternativeIdentifiers struct {
		FileVersionURN string `json:"fileVersionUrn"`
	} `json:"alternativeIdentifiers"`
}

// GetElementGroupsByProject lists the designs in a project.
func (c *Client) GetElementGroupsByProject(ctx context.Context, projectID string) ([]ElementGroup, error) {
	if err := requireID("projectId", projectID); err != nil {
		return nil, err
	}
	raw, err := collectPages[rawElementGroup](ctx, c, elementGroupsQuery, "elementGroupsByProject",
		map[string]any{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list element groups for project %s: %w", projectID, err)
	}

	groups := make([]ElementGroup, len(raw))
	for i, g := range raw {
		groups[i] = ElementGroup{
			ID:             g.ID,
			Name:           g.Name,
			FileVersionURN: g.AlternativeIdentifiers.FileVersionURN,
		}
	}
	return groups, nil
}

type rawProperty struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type rawElement struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	AlternativeIdentifiers struct {
		ExternalElementID string `json:"externalElementId"`
	} `json:"alternativeIdentifiers"`
	Properties struct {
		Results []rawProperty `json:"results"`
	} `json:"properties"`
}

func (r rawElement) flatten() Element {
	el := Element{
		ID:         r.ID,
		Name:       r.Name,
		ExternalID: r.AlternativeIdentifiers.ExternalElementID,
	}
	if len(r.Properties.Results) > 0 {
		el.Properties = make(map[string]any, len(r.Properties.Results))
	}
	for _, p := range r.Properties.Results {
		el.Properties[p.Name] = jsonutil.Value(p.Value)
		if strings.EqualFold(p.Name, "category") {
			el.Category = jsonutil.FlexibleStringValue(p.Value)
		}
	}
	return el
}

// CategoryFilter builds the filter selecting instances of one category.
func CategoryFilter(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", fmt.Errorf("%w: category is required", apperrors.ErrValidation)
	}
	if strings.ContainsAny(category, "'\n") {
		return "", fmt.Errorf("%w: category %q contains invalid characters", apperrors.ErrValidation, category)
	}
	return fmt.Sprintf("'property.name.category'=='%s' and 'property.name.Element Context'=='Instance'", category), nil
}

// GetElementsByCategory lists instance elements of a category in an element group.
func (c *Client) GetElementsByCategory(ctx context.Context, elementGroupID, category string) ([]Element, error) {
	filter, err := CategoryFilter(category)
	if err != nil {
		return nil, err
	}
	return c.GetElementsByFilter(ctx, elementGroupID, filter)
}

// GetElementsByFilter lists elements in an element group matching a raw
// AEC Data Model filter expression.
func (c *Client) GetElementsByFilter(ctx context.Context, elementGroupID, filter string) ([]Element, error) {
	if err := requireID("elementGroupId", elementGroupID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(filter) == "" {
		return nil, fmt.Errorf("%w: filter is required", apperrors.ErrValidation)
	}

	raw, err := collectPages[rawElement](ctx, c, elementsQuery, "elementsByElementGroup", map[string]any{
		"elementGroupId": elementGroupID,
		"filter":         filter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list elements for element group %s: %w", elementGroupID, err)
	}

	elements := make([]Element, len(raw))
	for i, r := range raw {
		elements[i] = r.flatten()
	}

	c.logger.Debug("Listed elements",
		zap.String("element_group_id", elementGroupID),
		zap.Int("count", len(elements)))
	return elements, nil
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", apperrors.ErrValidation, name)
	}
	return nil
}
