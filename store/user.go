package store

type User struct {
	ID           int32
	Username     string
	Email        string
	PasswordHash string

	// Physiological attributes. Zero values mean not provided.
	Age    int32
	Height float64 // cm
	Weight float64 // kg
	Gender string

	Goal          string
	ActivityLevel string

	CreatedTs int64
	UpdatedTs int64
}

type FindUser struct {
	ID       *int32
	Username *string
	Email    *string
}

type UpdateUser struct {
	ID int32

	Email         *string
	Age           *int32
	Height        *float64
	Weight        *float64
	Gender        *string
	Goal          *string
	ActivityLevel *string
	UpdatedTs     *int64
}
