// Package studio ties the query and analysis slots together. The Controller
// starts fetch attempts, drains their progress once per frame and keeps the
// state the UI renders.
package studio
