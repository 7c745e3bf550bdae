package model

type Doctor struct {
	ID             int64   `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Qualification  string  `db:"qualification" json:"qualification"`
	Specialization string  `db:"specialization" json:"specialization"`
	Experience     int     `db:"experience" json:"experience"`
	Department     string  `db:"department" json:"department"`
	ImageURL       *string `db:"image_url" json:"imageUrl"`
}

type CreateDoctorRequest struct {
	Name           string  `json:"name" validate:"required"`
	Qualification  string  `json:"qualification" validate:"required"`
	Specialization string  `json:"specialization" validate:"required"`
	Experience     int     `json:"experience" validate:"gte=0"`
	Department     string  `json:"department" validate:"required"`
	ImageURL       *string `json:"imageUrl"`
}
