// Package buildsys implements the build pipeline behind build-web: a fixed sequence of steps that drive
// the Rust toolchain (through mvdan.cc/sh) to compile a crate to WebAssembly, bundle it with wasm-bindgen
// and collect everything that's needed for a static website in one output directory.
package buildsys
