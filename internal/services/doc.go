// Package services contains the application service layer sitting between
// the HTTP transport and the analytics engine. Services add request-scoped
// logging and translate engine results into transport-facing shapes; they
// hold no analytical logic of their own.
package services
