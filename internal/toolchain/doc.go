// SPDX-License-Identifier: MPL-2.0

// Package toolchain decides how Maven is started for a project.
//
// Resolution tries, in order: the configured Maven home, the Maven wrapper
// launcher jar (provisioning it when missing), mvn on the search path, and
// finally a bare "mvn" fallback. It never fails; steps that could not be used
// are recorded on the returned Selection so the caller can explain a later
// failure precisely.
package toolchain
