package authRepository

const (
	queryCreateUser = `
INSERT INTO users (id, email, password, created_at)
VALUES (:id, :email, :password, :created_at)`

	queryGetByID = `
SELECT id, email, password, created_at
FROM users
    WHERE id = :id`

	queryGetByEmail = `
SELECT id, email, password, created_at
FROM users
    WHERE email = :email`

	queryDeleteUser = `
DELETE FROM users
WHERE id = :id`
)
