// Command token mints an access token signed with JWT_SECRET, for
// operators triggering admin stage operations by hand.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/iliyamo/fantasy-corps/internal/config"
	"github.com/iliyamo/fantasy-corps/internal/middleware"
	"github.com/iliyamo/fantasy-corps/internal/utils"
)

func main() {
	sub := flag.String("sub", "", "subject (user id)")
	role := flag.String("role", middleware.RoleAdmin, "role claim: ADMIN or PARTICIPANT")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to ACCESS_TOKEN_TTL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	r := strings.ToUpper(*role)
	if r != middleware.RoleAdmin && r != middleware.RoleParticipant {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}
	life := cfg.JWT.AccessTTL
	if *ttl > 0 {
		life = *ttl
	}
	tok, err := utils.NewAccessToken(cfg.JWT.Secret, *sub, r, life)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign:", err)
		os.Exit(1)
	}
	_ = json.NewEncoder(os.Stdout).Encode(tok)
}
