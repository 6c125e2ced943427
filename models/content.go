package models

import (
	"time"
)

// Document paths used in the hosted store
const (
	AboutDocPath           = "portfolio/about"
	SkillsCollectionPath   = "portfolio/_meta/skills"
	ProjectsCollectionPath = "portfolio/_meta/projects"
	MessagesCollectionPath = "portfolio/_meta/messages"
)

// AboutDocument is the singleton at portfolio/about
type AboutDocument struct {
	Text string `json:"text" firestore:"text" bson:"text"`
	Bio  string `json:"bio" firestore:"bio" bson:"bio"`
}

// AboutPatch carries the fields an editor changed; nil means untouched
type AboutPatch struct {
	Text *string `json:"text,omitempty"`
	Bio  *string `json:"bio,omitempty"`
}

// SkillGroup is one category of skills, keyed by its normalized id
type SkillGroup struct {
	ID         string   `json:"id"`
	SkillsList []string `json:"skillsList"`
}

// Project is one entry of the project gallery
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TechStack   TechStack `json:"techstack"`
	GithubLink  string    `json:"githubLink"`
	Live        string    `json:"live"`
	ImageURL    string    `json:"imageUrl"`
}

// ContactMessage is written by visitors and never read back
type ContactMessage struct {
	Name    string    `json:"name" validate:"required,max=200"`
	Email   string    `json:"email" validate:"required,email"`
	Message string    `json:"message" validate:"required,max=5000"`
	SentAt  time.Time `json:"sentAt,omitempty"`
}
