package strapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
)

type fields map[string]json.RawMessage

// unwrapEntity strips the {data: …} envelope and merges v4 "attributes" into
// the top level so flat and nested shapes decode the same way.
func unwrapEntity(raw json.RawMessage) (fields, error) {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New("empty entity")
	}
	if data, ok := f["data"]; ok {
		if _, hasID := f["id"]; !hasID {
			return unwrapEntity(data)
		}
	}
	if attrs, ok := f["attributes"]; ok {
		var a fields
		if err := json.Unmarshal(attrs, &a); err == nil {
			for k, v := range a {
				if _, exists := f[k]; !exists {
					f[k] = v
				}
			}
		}
		delete(f, "attributes")
	}
	return f, nil
}

// unwrapList accepts a bare array or a {data: [...]} envelope.
func unwrapList(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		raw = env.Data
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("expected a list: %w", err)
	}
	return items, nil
}

// text renders a scalar as display text: strings as-is, numbers verbatim,
// anything else empty.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		_ = json.Unmarshal(raw, &s)
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	}
	return ""
}

func (f fields) entityID() model.EntityID {
	var id model.EntityID
	for _, k := range []string{"id", "documentId"} {
		if v, ok := f[k]; ok {
			if err := json.Unmarshal(v, &id); err == nil && !id.IsZero() {
				return id
			}
		}
	}
	return ""
}

func (f fields) str(keys ...string) string {
	for _, k := range keys {
		if s := text(f[k]); s != "" {
			return s
		}
	}
	return ""
}

type userDTO struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Blocked   *bool     `json:"blocked"`
	Warnings  *int      `json:"warnings"`
	CreatedAt time.Time `json:"createdAt"`
}

func decodeUser(raw json.RawMessage) (*model.ManagedUser, error) {
	f, err := unwrapEntity(raw)
	if err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	id := f.entityID()
	if id.IsZero() {
		return nil, errors.New("decode user: missing id")
	}
	flat, _ := json.Marshal(f)
	var dto userDTO
	if err := json.Unmarshal(flat, &dto); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	u := &model.ManagedUser{
		ID:        id,
		Username:  dto.Username,
		Email:     dto.Email,
		Phone:     dto.Phone,
		CreatedAt: dto.CreatedAt,
	}
	if dto.Blocked != nil {
		u.Blocked = *dto.Blocked
	}
	if dto.Warnings != nil && *dto.Warnings > 0 {
		u.Warnings = *dto.Warnings
	}
	return u, nil
}

// ParseProduct decodes a product from a webhook entry or a REST payload.
// Relative image urls are prefixed with mediaBaseURL.
func ParseProduct(raw json.RawMessage, mediaBaseURL string) (*model.Product, error) {
	f, err := unwrapEntity(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}
	id := f.entityID()
	if id.IsZero() {
		return nil, fmt.Errorf("%w: product without id", domain.ErrMalformedEvent)
	}
	p := &model.Product{
		ID:          id,
		Title:       f.str("title", "name"),
		Description: f.str("description"),
		Price:       f.str("price"),
		State:       model.PendingReview,
	}
	if pub := bytes.TrimSpace(f["publishedAt"]); len(pub) > 0 && !bytes.Equal(pub, []byte("null")) {
		p.State = model.Published
	}
	for _, k := range []string{"images", "image", "photo", "photos"} {
		if u := mediaURL(f[k]); u != "" {
			p.ImageURL = absoluteURL(u, mediaBaseURL)
			break
		}
	}
	return p, nil
}

// mediaURL finds the first "url" in a media field, whatever its nesting:
// {data: [{attributes: {url}}]}, [{url}], {url}.
func mediaURL(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return ""
		}
		for _, it := range items {
			if u := mediaURL(it); u != "" {
				return u
			}
		}
	case '{':
		var f fields
		if err := json.Unmarshal(raw, &f); err != nil {
			return ""
		}
		if u := text(f["url"]); u != "" {
			return u
		}
		if u := mediaURL(f["attributes"]); u != "" {
			return u
		}
		return mediaURL(f["data"])
	}
	return ""
}

func absoluteURL(u, base string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") || base == "" {
		return u
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(u, "/")
}
