package remote

// 远端 GraphQL 返回的原始结构，字段与 schema 保持一致
// 不同版本的查询返回的字段集合不同，缺失字段保持零值，由领域层统一归一化

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	PhoneNo   int64  `json:"phoneNo"`
	Role      string `json:"role"`
	CanUpload *bool  `json:"canUpload"`
}

type Media struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Type       string `json:"type"`
	Compressed bool   `json:"compressed"`
}

type Comment struct {
	ID        string  `json:"id"`
	Content   string  `json:"content"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"createdAt"`
	ExpiresAt *string `json:"expiresAt"`
	User      *User   `json:"user"`
}

type Post struct {
	ID        string     `json:"id"`
	Caption   string     `json:"caption"`
	CreatedAt string     `json:"createdAt"`
	Status    string     `json:"status"`
	User      *User      `json:"user"`
	Media     []*Media   `json:"media"`
	Comments  []*Comment `json:"comments"`
	Likes     *int       `json:"likes"`
	Shares    *int       `json:"shares"`
}

type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Seen      bool   `json:"seen"`
	CreatedAt string `json:"createdAt"`
	ActionURL string `json:"actionUrl"`
	User      *User  `json:"user"`
}

type UploadRequest struct {
	ID          string `json:"id"`
	RequestedAt string `json:"requestedAt"`
	Status      string `json:"status"`
	User        *User  `json:"user"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
