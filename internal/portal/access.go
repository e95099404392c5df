// AngelaMos | 2026
// access.go

package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/project"
)

type ProjectSource interface {
	ListForClient(ctx context.Context, clientID string) ([]project.Project, error)
	GetForClient(ctx context.Context, clientID, id string) (*project.Project, error)
}

// AccessSet answers which projects a resolved client may see. Nothing is
// cached: every project-scoped read asks the store again.
type AccessSet struct {
	projects ProjectSource
}

func NewAccessSet(projects ProjectSource) *AccessSet {
	return &AccessSet{projects: projects}
}

func (a *AccessSet) Projects(ctx context.Context, c *client.Client) ([]project.Project, error) {
	projects, err := a.projects.ListForClient(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list access set: %w", err)
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return projects, nil
}

// Project returns the project only when c owns it. A project owned by
// someone else is reported exactly like one that does not exist.
func (a *AccessSet) Project(ctx context.Context, c *client.Client, id string) (*project.Project, error) {
	if err := core.RequireID("project in access set", id); err != nil {
		return nil, err
	}

	p, err := a.projects.GetForClient(ctx, c.ID, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("project in access set: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("project in access set: %w", err)
	}

	if p.ClientID != c.ID {
		return nil, fmt.Errorf("project in access set: %w", core.ErrNotFound)
	}
	return p, nil
}
