package apiv1

// Account is the public view of a user.
type Account struct {
	Id        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// Source is the markup, style and script of a playground.
type Source struct {
	Markup string `json:"markup"`
	Style  string `json:"style"`
	Script string `json:"script"`
}

func (x *Source) GetMarkup() string {
	if x != nil {
		return x.Markup
	}
	return ""
}

func (x *Source) GetStyle() string {
	if x != nil {
		return x.Style
	}
	return ""
}

func (x *Source) GetScript() string {
	if x != nil {
		return x.Script
	}
	return ""
}

type Project struct {
	Id             string  `json:"id,omitempty"`
	Title          string  `json:"title,omitempty"`
	Source         *Source `json:"source,omitempty"`
	OwnerId        string  `json:"ownerId,omitempty"`
	AuthorUsername string  `json:"authorUsername,omitempty"`
	CreatedAt      int64   `json:"createdAt,omitempty"`
	UpdatedAt      int64   `json:"updatedAt,omitempty"`
}

type Diagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Origin  string `json:"origin,omitempty"`
}

type ConsoleEntry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// AuthService

type SignUpRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Username string `json:"username,omitempty"`
}

type SignUpResponse struct {
	Account *Account `json:"account,omitempty"`
	Token   string   `json:"token,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type SignInResponse struct {
	Account *Account `json:"account,omitempty"`
	Token   string   `json:"token,omitempty"`
}

type SignOutRequest struct{}

type SignOutResponse struct{}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	SignedIn bool     `json:"signedIn"`
	Account  *Account `json:"account,omitempty"`
}

type UpdateProfileRequest struct {
	Username string `json:"username,omitempty"`
}

type UpdateProfileResponse struct {
	Account *Account `json:"account,omitempty"`
}

// ProjectService

// SaveProjectRequest creates a project when Id is empty and updates it otherwise.
type SaveProjectRequest struct {
	Id     string  `json:"id,omitempty"`
	Title  string  `json:"title,omitempty"`
	Source *Source `json:"source,omitempty"`
}

func (x *SaveProjectRequest) GetSource() *Source {
	if x != nil {
		return x.Source
	}
	return nil
}

type SaveProjectResponse struct {
	Project *Project `json:"project,omitempty"`
	Created bool     `json:"created"`
}

type GetProjectRequest struct {
	Id string `json:"id,omitempty"`
}

type GetProjectResponse struct {
	Project *Project `json:"project,omitempty"`
}

// ListProjectsRequest filters the gallery. OrderBy is one of "updated"
// (default), "created" or "title". Offset skips rows of the ordered listing;
// pass the previous response's NextOffset to read the next page.
type ListProjectsRequest struct {
	Mine    bool   `json:"mine,omitempty"`
	Query   string `json:"query,omitempty"`
	Limit   int32  `json:"limit,omitempty"`
	Offset  int32  `json:"offset,omitempty"`
	OrderBy string `json:"orderBy,omitempty"`
}

// ListProjectsResponse holds one page. NextOffset is zero on the last page.
type ListProjectsResponse struct {
	Projects   []*Project `json:"projects"`
	NextOffset int32      `json:"nextOffset,omitempty"`
}

type DeleteProjectRequest struct {
	Id string `json:"id,omitempty"`
}

type DeleteProjectResponse struct{}

// ExportProjectRequest exports a saved project when Id is set, otherwise the
// given title and source.
type ExportProjectRequest struct {
	Id     string  `json:"id,omitempty"`
	Title  string  `json:"title,omitempty"`
	Source *Source `json:"source,omitempty"`
}

func (x *ExportProjectRequest) GetSource() *Source {
	if x != nil {
		return x.Source
	}
	return nil
}

type ExportProjectResponse struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type ImportProjectRequest struct {
	Content string `json:"content"`
}

type ImportProjectResponse struct {
	Title  string  `json:"title"`
	Source *Source `json:"source"`
}

// PreviewService

type RenderRequest struct {
	Source *Source `json:"source,omitempty"`
}

func (x *RenderRequest) GetSource() *Source {
	if x != nil {
		return x.Source
	}
	return nil
}

type RenderResponse struct {
	Document    string          `json:"document"`
	Body        string          `json:"body"`
	Text        string          `json:"text"`
	Diagnostics []*Diagnostic   `json:"diagnostics"`
	Console     []*ConsoleEntry `json:"console"`
	TimedOut    bool            `json:"timedOut"`
	DurationMs  int64           `json:"durationMs"`
}
