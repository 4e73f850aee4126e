// Package models contains the relational entities of the portal.
package models
