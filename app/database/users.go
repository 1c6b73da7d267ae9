package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/neptgadgets/school-nexus-final-sub000/app/models"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, school_id, email, password, first_name, last_name, phone, role, is_active, created_at, updated_at`

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = TRUE`
	return scanUser(db.QueryRow(query, email))
}

func GetUserByID(db *sql.DB, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = TRUE`
	return scanUser(db.QueryRow(query, userID))
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var schoolID, phone sql.NullString
	var role string

	err := row.Scan(
		&user.ID, &schoolID, &user.Email, &user.Password, &user.FirstName,
		&user.LastName, &phone, &role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if schoolID.Valid {
		user.SchoolID = &schoolID.String
	}
	user.Phone = phone.String
	user.Role = models.Role(role)
	return user, nil
}

// CreateUser inserts user, filling in the id and timestamps. user.Password must
// already be hashed.
func CreateUser(db *sql.DB, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	var phone sql.NullString
	if user.Phone != "" {
		phone = sql.NullString{String: user.Phone, Valid: true}
	}

	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := db.Exec(query,
		user.ID, user.SchoolID, user.Email, user.Password, user.FirstName, user.LastName,
		phone, string(user.Role), user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	return err
}
