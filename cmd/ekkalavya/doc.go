// Command ekkalavya is the command-line front end for sports motion and
// training-space analysis.
//
// It scores pose snapshots against sport profiles, analyzes room images into
// training constraints with marker layouts, manages custom sport profiles and
// recorded sessions, and runs the live camera pipeline.
package main
