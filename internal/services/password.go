package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns typed passwords into their stored form and back.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, password string) bool
}

// PlainPasswords stores passwords exactly as typed.
type PlainPasswords struct{}

func (PlainPasswords) Hash(password string) (string, error) { return password, nil }

func (PlainPasswords) Matches(stored, password string) bool { return stored == password }

// BcryptPasswords stores bcrypt hashes.
type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (BcryptPasswords) Matches(stored, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	return err == nil
}

// PasswordHasherFor maps a config value to a hasher.
func PasswordHasherFor(mode string) (PasswordHasher, error) {
	switch mode {
	case "", "plain":
		return PlainPasswords{}, nil
	case "bcrypt":
		return BcryptPasswords{}, nil
	}
	return nil, errors.New("unknown password hashing mode: " + mode)
}
