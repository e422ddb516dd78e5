package pg

import "errors"

var (
	ErrPoolNotInitialized      = errors.New("database pool is not initialized")
	ErrPoolAlreadyCreated      = errors.New("database pool is already created")
	ErrFailedToCreatePool      = errors.New("failed to create database pool")
	ErrFailedToParseDBConfig   = errors.New("failed to parse db config")
	ErrFailedToCreateSchema    = errors.New("failed to create database schema")
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
)
