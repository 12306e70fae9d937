// Package ui is the Chronology terminal dashboard, built with Bubble Tea.
//
// The app has two modes: a dashboard listing projects and a project
// detail view with the metrics table, a sparkline chart and summary
// stats. Commands live behind the SPC leader key:
//   - SPC p c / SPC p d / SPC p s: create, delete, switch project
//   - SPC e c / SPC e x / SPC e j / SPC e p: export the open project as
//     CSV, Excel, JSON or Parquet
//   - SPC m: show or hide metrics of the open project
//   - SPC r: reload
//
// In the table, e edits the selected row and a adds a record through a
// form. In bulk edit mode (b) the same keys stage changes until ctrl+s.
//
// Modals are pushed onto an OverlayStack and receive input first.
package ui
