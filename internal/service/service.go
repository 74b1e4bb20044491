// Package service contains the business logic layer of the application.
//
// THE THREE LAYERS:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept primitives and return domain values or apperror errors.
// They never see an *http.Request and never pick a status code; the handler
// maps apperror sentinels to HTTP.
//
// DEPENDENCY INJECTION:
// Every service takes interfaces (repository.StreakRepository, llm.Provider,
// ...) so tests pass in-memory fakes and main.go picks SQLite or Postgres,
// OpenAI or Anthropic, without this package importing any of them.
package service
