//	@title			filebucket API
//	@version		1.0
//	@description	Ephemeral file drop: upload files under a folder name, share the 4-digit PIN, recipients download until the bucket expires.
//
//	@host		localhost:8080
//	@BasePath	/api
//
//	@securityDefinitions.apikey	AdminPin
//	@in							header
//	@name						X-Admin-Pin
//	@description				Master admin PIN.
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin session token. Format: **Bearer {token}**
//
//	@securityDefinitions.apikey	CronSecret
//	@in							header
//	@name						Authorization
//	@description				Purge trigger secret. Format: **Bearer {CRON_SECRET}**

package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
