package model

import (
	"fmt"
	"time"
)

type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

func (t FileType) Valid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

// ThumbnailWidths are generated for every uploaded file, largest first
var ThumbnailWidths = []int{500, 250, 100}

type File struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Type      FileType  `db:"type" json:"type"`
	IsPublic  bool      `db:"is_public" json:"isPublic"`
	ParentID  Parent    `db:"parent_id" json:"parentId"`
	LocalPath *string   `db:"local_path" json:"-"` // nil for folders
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}

func (f *File) OwnedBy(userID string) bool {
	return userID != "" && f.UserID == userID
}

// VisibleTo reports read access: owners always, everyone else only when public
func (f *File) VisibleTo(userID string) bool {
	return f.OwnedBy(userID) || f.IsPublic
}

// ThumbnailPath returns where the derivative for width is stored
func (f *File) ThumbnailPath(width int) string {
	if f.LocalPath == nil {
		return ""
	}
	return fmt.Sprintf("%s_%d", *f.LocalPath, width)
}

// Visibility is the response to publish/unpublish
type Visibility struct {
	ID       string `json:"id"`
	IsPublic bool   `json:"isPublic"`
}

// FilePage is one page of a folder listing
type FilePage struct {
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
	TotalItems int     `json:"totalItems"`
	Data       []*File `json:"data"`
}
