package handlers

import (
	"blog-service/internal/models"
	"blog-service/internal/service"
	"blog-service/internal/storage"
)

// Представления API. Таймстемпы — Unix UTC.

type userView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type postView struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Tags         []string `json:"tags"`
	AuthorID     string   `json:"author_id"`
	AuthorName   string   `json:"author_name"`
	Published    bool     `json:"published"`
	CommentCount int64    `json:"comment_count"`
	CreatedAt    int64    `json:"created_at"`
	UpdatedAt    int64    `json:"updated_at"`
}

type commentView struct {
	ID         string `json:"id"`
	PostID     string `json:"post_id"`
	ParentID   string `json:"parent_id,omitempty"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

// paginationView — сводка пагинации списочных выдач.
type paginationView struct {
	CurrentPage int64 `json:"current_page"`
	TotalPages  int64 `json:"total_pages"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type authResponse struct {
	Message string   `json:"message"`
	User    userView `json:"user"`
	Token   string   `json:"token"`
}

type postsListResponse struct {
	Posts      []postView     `json:"posts"`
	Pagination paginationView `json:"pagination"`
}

type commentsListResponse struct {
	Comments   []commentView  `json:"comments"`
	Pagination paginationView `json:"pagination"`
}

type usersListResponse struct {
	Users      []userView     `json:"users"`
	Pagination paginationView `json:"pagination"`
}

type avatarPresignResponse struct {
	UploadURL      string            `json:"upload_url"`
	AvatarKey      string            `json:"avatar_key"`
	ExpiresSeconds uint32            `json:"expires_seconds"`
	RequiredHeader map[string]string `json:"required_headers"`
}

func userToView(u *models.User) userView {
	return userView{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt.Unix(),
		UpdatedAt: u.UpdatedAt.Unix(),
	}
}

func postToView(p *models.Post) postView {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return postView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Tags:         tags,
		AuthorID:     p.AuthorID.String(),
		AuthorName:   p.AuthorName,
		Published:    p.Published,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt.Unix(),
		UpdatedAt:    p.UpdatedAt.Unix(),
	}
}

func commentToView(c *models.Comment) commentView {
	return commentView{
		ID:         c.ID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		AuthorID:   c.AuthorID.String(),
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt.Unix(),
		UpdatedAt:  c.UpdatedAt.Unix(),
	}
}

func paginationOf(page, totalPages, total int64) paginationView {
	return paginationView{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

func postsToList(p *models.PostPage) postsListResponse {
	posts := make([]postView, 0, len(p.Items))
	for i := range p.Items {
		posts = append(posts, postToView(&p.Items[i]))
	}

	return postsListResponse{
		Posts:      posts,
		Pagination: paginationOf(p.Page, p.TotalPages, p.Total),
	}
}

func commentsToList(p *models.CommentPage) commentsListResponse {
	comments := make([]commentView, 0, len(p.Items))
	for i := range p.Items {
		comments = append(comments, commentToView(&p.Items[i]))
	}

	return commentsListResponse{
		Comments:   comments,
		Pagination: paginationOf(p.Page, p.TotalPages, p.Total),
	}
}

func usersToList(p *service.UserPage) usersListResponse {
	users := make([]userView, 0, len(p.Items))
	for i := range p.Items {
		users = append(users, userToView(&p.Items[i]))
	}

	return usersListResponse{
		Users:      users,
		Pagination: paginationOf(p.Page, p.TotalPages, p.Total),
	}
}

func presignToView(info *storage.UploadInfo) avatarPresignResponse {
	return avatarPresignResponse{
		UploadURL:      info.UploadURL,
		AvatarKey:      info.AvatarKey,
		ExpiresSeconds: uint32(info.Expires.Seconds()),
		RequiredHeader: info.RequiredHeader,
	}
}
