// Package main Ark Gateway API
//
//	@title			Ark Gateway API
//	@version		1.0
//	@description	Thin gateway from a web client to Ark chat, image and video generation.
//
//	@license.name	Proprietary
//
//	@host			localhost:8000
//	@BasePath		/
//
//	@tag.name			Generation
//	@tag.description	Chat, image and video generation
//
//	@tag.name			System
//	@tag.description	Liveness
package main
