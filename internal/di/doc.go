// Package di wires the long-lived services (configuration, logger, HTTP
// client, generation model, document store and endpoint client) into a
// samber/do container so each is built once and shared by its users.
package di
