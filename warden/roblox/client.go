// Package roblox resolves Roblox accounts for the verification and stats
// workflows. Non-2xx responses and malformed payloads are reported as not
// found, never as fatal errors; only transport failures surface as errors.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	defaultUsersURL  = "https://users.roblox.com"
	defaultGroupsURL = "https://groups.roblox.com"

	groupCacheSize = 512
)

var ErrNotFound = errors.New("roblox user not found")

type Profile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Banned      bool      `json:"isBanned"`
}

type GroupRole struct {
	GroupID   int64
	GroupName string
	RoleName  string
	Rank      int
}

type Client struct {
	httpClient *http.Client
	usersURL   string
	groupsURL  string
	groups     *lru.Cache
}

func New() *Client {
	return NewWithClient(&http.Client{Timeout: 10 * time.Second}, defaultUsersURL, defaultGroupsURL)
}

func NewWithClient(httpClient *http.Client, usersURL, groupsURL string) *Client {
	cache, _ := lru.New(groupCacheSize)
	return &Client{
		httpClient: httpClient,
		usersURL:   usersURL,
		groupsURL:  groupsURL,
		groups:     cache,
	}
}

// ResolveUsername maps a username to a full profile. Profiles are never
// cached: the verification flow depends on a fresh description field.
func (c *Client) ResolveUsername(ctx context.Context, username string) (*Profile, error) {
	body, err := json.Marshal(struct {
		Usernames          []string `json:"usernames"`
		ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
	}{Usernames: []string{username}, ExcludeBannedUsers: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode username lookup: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.usersURL+"/v1/usernames/users", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("username lookup failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrNotFound
	}

	var result struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || len(result.Data) == 0 {
		return nil, ErrNotFound
	}

	return c.GetUser(ctx, result.Data[0].ID)
}

// GetUser fetches profile details by user ID.
func (c *Client) GetUser(ctx context.Context, id int64) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/users/%d", c.usersURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrNotFound
	}

	profile := new(Profile)
	if err := json.NewDecoder(resp.Body).Decode(profile); err != nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

// GetGroups lists the user's group memberships with their role in each.
// Results are LRU-cached; group membership is display-only data and a
// slightly stale answer is acceptable.
func (c *Client) GetGroups(ctx context.Context, id int64) ([]GroupRole, error) {
	if cached, ok := c.groups.Get(id); ok {
		return cached.([]GroupRole), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/users/%d/groups/roles", c.groupsURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("group lookup failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrNotFound
	}

	var result struct {
		Data []struct {
			Group struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"group"`
			Role struct {
				Name string `json:"name"`
				Rank int    `json:"rank"`
			} `json:"role"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, ErrNotFound
	}

	groups := make([]GroupRole, 0, len(result.Data))
	for _, entry := range result.Data {
		groups = append(groups, GroupRole{
			GroupID:   entry.Group.ID,
			GroupName: entry.Group.Name,
			RoleName:  entry.Role.Name,
			Rank:      entry.Role.Rank,
		})
	}
	c.groups.Add(id, groups)
	return groups, nil
}

// AvatarURL returns the headshot thumbnail URL for a user.
func AvatarURL(id int64) string {
	return fmt.Sprintf("https://www.roblox.com/headshot-thumbnail/image?userId=%d&width=150&height=150&format=png", id)
}

// ProfileURL returns the public profile URL for a user.
func ProfileURL(id int64) string {
	return fmt.Sprintf("https://www.roblox.com/users/%d/profile", id)
}
