package baas

import (
	"context"
	"net/url"
)

// Group is a named membership list. Members are user IDs; nested group
// names are allowed.
type Group struct {
	Name    string   `json:"name,omitempty" mapstructure:"name"`
	Users   []string `json:"users" mapstructure:"users"`
	Groups  []string `json:"groups" mapstructure:"groups"`
	ACL     *Acl     `json:"ACL,omitempty" mapstructure:"ACL"`
	Created string   `json:"createdAt,omitempty" mapstructure:"createdAt"`
	Updated string   `json:"updatedAt,omitempty" mapstructure:"updatedAt"`
	ETag    string   `json:"etag,omitempty" mapstructure:"etag"`
}

func groupPath(name, sub string) string {
	p := "/groups/" + url.PathEscape(name)
	if sub != "" {
		p += "/" + sub
	}
	return p
}

// SaveGroup creates or replaces the named group.
func SaveGroup(ctx context.Context, s *Service, g *Group) (*Group, error) {
	body := map[string]any{
		"users":  g.Users,
		"groups": g.Groups,
	}
	if g.ACL != nil {
		body["ACL"] = g.ACL
	}
	resp, err := s.NewRequest(groupPath(g.Name, "")).
		SetMethod("PUT").
		SetData(body).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return decodeGroupResponse(resp)
}

// GetGroup fetches one group by name.
func GetGroup(ctx context.Context, s *Service, name string) (*Group, error) {
	resp, err := s.NewRequest(groupPath(name, "")).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return decodeGroupResponse(resp)
}

// QueryGroups lists every group of the tenant.
func QueryGroups(ctx context.Context, s *Service) ([]*Group, error) {
	resp, err := s.NewRequest("/groups").
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	envelope, err := asObject(resp)
	if err != nil {
		return nil, err
	}
	groups := make([]*Group, 0)
	for _, obj := range asObjectList(envelope["results"]) {
		g, err := decodeGroup(obj)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// AddMembers adds users and nested groups to the named group.
func AddMembers(ctx context.Context, s *Service, name string, users, groups []string) (*Group, error) {
	return changeMembers(ctx, s, name, "addMembers", users, groups)
}

// RemoveMembers removes users and nested groups from the named group.
func RemoveMembers(ctx context.Context, s *Service, name string, users, groups []string) (*Group, error) {
	return changeMembers(ctx, s, name, "removeMembers", users, groups)
}

func changeMembers(ctx context.Context, s *Service, name, op string, users, groups []string) (*Group, error) {
	body := map[string]any{}
	if users != nil {
		body["users"] = users
	}
	if groups != nil {
		body["groups"] = groups
	}
	resp, err := s.NewRequest(groupPath(name, op)).
		SetMethod("PUT").
		SetData(body).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return decodeGroupResponse(resp)
}

// DeleteGroup removes the named group.
func DeleteGroup(ctx context.Context, s *Service, name string) error {
	_, err := s.NewRequest(groupPath(name, "")).SetMethod("DELETE").Do(ctx)
	return err
}

func decodeGroupResponse(resp *Response) (*Group, error) {
	obj, err := asObject(resp)
	if err != nil {
		return nil, err
	}
	return decodeGroup(obj)
}

func decodeGroup(obj map[string]any) (*Group, error) {
	var g Group
	if err := decodeEntity(obj, &g); err != nil {
		return nil, err
	}
	return &g, nil
}
