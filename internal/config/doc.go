// SPDX-License-Identifier: MPL-2.0

// Package config builds the immutable environment snapshot the Maven
// components run against.
//
// Values come from four layers, highest precedence first: the process
// environment (MAVEN_BASEDIR, M2_HOME, JAVA_HOME, MAVEN_OPTS, ...), the
// mavenrc files (/etc/mavenrc, ~/.mavenrc) unless MAVEN_SKIP_RC is set, an
// optional CUE config file validated against config_schema.cue, and built-in
// defaults. Loading uses a fresh Viper instance per call so independent
// snapshots never leak into each other.
package config
