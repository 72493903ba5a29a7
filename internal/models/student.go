package models

import "time"

// Student represents one enrolled individual managed by the roster.
// Optional fields are pointers so that blank input round-trips as JSON null.
type Student struct {
	ID            string    `db:"id" json:"id"`
	Nom           string    `db:"nom" json:"nom"`
	Prenom        string    `db:"prenom" json:"prenom"`
	Email         string    `db:"email" json:"email"`
	Filiere       string    `db:"filiere" json:"filiere"`
	Niveau        string    `db:"niveau" json:"niveau"`
	Telephone     *string   `db:"telephone" json:"telephone"`
	Adresse       *string   `db:"adresse" json:"adresse"`
	DateNaissance *string   `db:"date_naissance" json:"dateNaissance"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// StudentFilter encapsulates the recognized listing predicates. Search is a
// case-insensitive substring match over nom, prenom and email; filiere and
// niveau are exact matches. All provided predicates combine with AND.
type StudentFilter struct {
	Search  string
	Filiere string
	Niveau  string
}

// GroupCount pairs a grouping value with its row count.
type GroupCount struct {
	Value string `db:"value" json:"value"`
	Count int    `db:"count" json:"count"`
}

// StudentStats is the dashboard summary payload.
type StudentStats struct {
	TotalStudents  int          `json:"totalStudents"`
	ParFiliere     []GroupCount `json:"parFiliere"`
	ParNiveau      []GroupCount `json:"parNiveau"`
	RecentStudents []Student    `json:"recentStudents"`
}
