package store

import (
	"github.com/phrazzld/quill-api/internal/domain"
)

// ClientSchema maps domain.Client onto the clients table.
var ClientSchema = &Schema[domain.Client]{
	Entity: "client",
	Table:  "clients",
	Columns: []Column[domain.Client]{
		{
			Name:  IDField,
			Value: func(c *domain.Client) any { return c.ID },
			Ref:   func(c *domain.Client) any { return &c.ID },
		},
		{
			Name:    "name",
			Mutable: true,
			Value:   func(c *domain.Client) any { return c.Name },
			Ref:     func(c *domain.Client) any { return &c.Name },
		},
		{
			Name:    "token",
			Mutable: true,
			Unique:  true,
			Value:   func(c *domain.Client) any { return c.Token },
			Ref:     func(c *domain.Client) any { return &c.Token },
		},
		{
			Name:      CreatedAtField,
			Generated: true,
			Value:     func(c *domain.Client) any { return c.CreatedAt },
			Ref:       func(c *domain.Client) any { return &c.CreatedAt },
		},
	},
	New:      func() *domain.Client { return &domain.Client{} },
	NotFound: ErrClientNotFound,
	Conflict: ErrTokenExists,
}

// PostSchema maps domain.Post onto the posts table.
var PostSchema = &Schema[domain.Post]{
	Entity: "post",
	Table:  "posts",
	Columns: []Column[domain.Post]{
		{
			Name:  IDField,
			Value: func(p *domain.Post) any { return p.ID },
			Ref:   func(p *domain.Post) any { return &p.ID },
		},
		{
			Name:  "client_id",
			Value: func(p *domain.Post) any { return p.ClientID },
			Ref:   func(p *domain.Post) any { return &p.ClientID },
		},
		{
			Name:    "title",
			Mutable: true,
			Value:   func(p *domain.Post) any { return p.Title },
			Ref:     func(p *domain.Post) any { return &p.Title },
		},
		{
			Name:    "content",
			Mutable: true,
			Value:   func(p *domain.Post) any { return p.Content },
			Ref:     func(p *domain.Post) any { return &p.Content },
		},
		{
			Name:      CreatedAtField,
			Generated: true,
			Value:     func(p *domain.Post) any { return p.CreatedAt },
			Ref:       func(p *domain.Post) any { return &p.CreatedAt },
		},
		{
			Name:      UpdatedAtField,
			Generated: true,
			Value:     func(p *domain.Post) any { return p.UpdatedAt },
			Ref:       func(p *domain.Post) any { return &p.UpdatedAt },
		},
	},
	New:      func() *domain.Post { return &domain.Post{} },
	NotFound: ErrPostNotFound,
}
