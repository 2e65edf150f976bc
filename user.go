// user.go
// -------
// User account operations. Login installs the session token on the
// Service so every later request carries it.
package baas

import "context"

// User is one account on the backend.
type User struct {
	ID       string         `json:"_id,omitempty" mapstructure:"_id"`
	Username string         `json:"username,omitempty" mapstructure:"username"`
	Email    string         `json:"email,omitempty" mapstructure:"email"`
	Options  map[string]any `json:"options,omitempty" mapstructure:"options"`
	Groups   []string       `json:"groups,omitempty" mapstructure:"groups"`
	Created  string         `json:"createdAt,omitempty" mapstructure:"createdAt"`
	Updated  string         `json:"updatedAt,omitempty" mapstructure:"updatedAt"`
	ETag     string         `json:"etag,omitempty" mapstructure:"etag"`
}

// LoginParam identifies the account to log in. Exactly one of Username or
// Email is required.
type LoginParam struct {
	Username string
	Email    string
	Password string
}

// RegisterUser creates a new account.
func RegisterUser(ctx context.Context, s *Service, user *User, password string) (*User, error) {
	body := map[string]any{"password": password}
	if user.Username != "" {
		body["username"] = user.Username
	}
	if user.Email != "" {
		body["email"] = user.Email
	}
	if user.Options != nil {
		body["options"] = user.Options
	}
	resp, err := s.NewRequest("/users").
		SetMethod("POST").
		SetData(body).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	obj, err := asObject(resp)
	if err != nil {
		return nil, err
	}
	return decodeUser(obj)
}

// LogIn authenticates and installs the returned session token on the
// service.
func LogIn(ctx context.Context, s *Service, param LoginParam) (*User, error) {
	if param.Username == "" && param.Email == "" {
		return nil, ErrConfiguration.New("login requires a username or an email")
	}
	body := map[string]any{"password": param.Password}
	if param.Username != "" {
		body["username"] = param.Username
	}
	if param.Email != "" {
		body["email"] = param.Email
	}
	resp, err := s.NewRequest("/login").
		SetMethod("POST").
		SetData(body).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	obj, err := asObject(resp)
	if err != nil {
		return nil, err
	}

	token, _ := obj["sessionToken"].(string)
	var expire int64
	if e, ok := obj["expire"].(float64); ok {
		expire = int64(e)
	}
	s.SetSessionToken(token, expire)
	return decodeUser(obj)
}

// LogOut invalidates the session on the server and clears the service
// session token.
func LogOut(ctx context.Context, s *Service) error {
	_, err := s.NewRequest("/login").SetMethod("DELETE").Do(ctx)
	if err != nil {
		return err
	}
	s.SetSessionToken("", 0)
	return nil
}

// CurrentUser fetches the account tied to the current session token.
func CurrentUser(ctx context.Context, s *Service) (*User, error) {
	resp, err := s.NewRequest("/users/current").
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	obj, err := asObject(resp)
	if err != nil {
		return nil, err
	}
	return decodeUser(obj)
}

// QueryUsers lists accounts matching the given username and/or email;
// both empty lists everything.
func QueryUsers(ctx context.Context, s *Service, username, email string) ([]*User, error) {
	req := s.NewRequest("/users").SetResponseKind(ResponseJSON)
	if username != "" {
		req.SetQueryParam("username", username)
	}
	if email != "" {
		req.SetQueryParam("email", email)
	}
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	envelope, err := asObject(resp)
	if err != nil {
		return nil, err
	}
	users := make([]*User, 0)
	for _, obj := range asObjectList(envelope["results"]) {
		u, err := decodeUser(obj)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Update writes the user's mutable fields. password may be empty to leave
// it unchanged.
func (u *User) Update(ctx context.Context, s *Service, password string) (*User, error) {
	body := map[string]any{}
	if u.Username != "" {
		body["username"] = u.Username
	}
	if u.Email != "" {
		body["email"] = u.Email
	}
	if u.Options != nil {
		body["options"] = u.Options
	}
	if password != "" {
		body["password"] = password
	}
	resp, err := s.NewRequest("/users/"+u.ID).
		SetMethod("PUT").
		SetData(body).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	obj, err := asObject(resp)
	if err != nil {
		return nil, err
	}
	return decodeUser(obj)
}

// Delete removes the account.
func (u *User) Delete(ctx context.Context, s *Service) error {
	_, err := s.NewRequest("/users/" + u.ID).SetMethod("DELETE").Do(ctx)
	return err
}

func decodeUser(obj map[string]any) (*User, error) {
	var u User
	if err := decodeEntity(obj, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
