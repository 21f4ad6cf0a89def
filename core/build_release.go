// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build release

package core

// DebugBuild is true unless built with the release tag.
const DebugBuild = false
