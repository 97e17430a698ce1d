// Package tui is the terminal front end for stored code overviews.
//
// The home page asks for an overview ID and checks, after a short pause in
// typing, whether the document exists. Opening it shows two tabs: the
// rendered overview and a chat about it. Each message the user sends is
// recorded in the document before the chat endpoint is asked for a reply.
package tui
