// Command sitemap-export renders a stored site map or a project file to PNG
// or PDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"site-mapper/internal/app"
	"site-mapper/internal/config"
	"site-mapper/internal/logging"
	"site-mapper/internal/store"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing site-mapper.cfg.json")
	siteID := flag.String("site", "", "Export the stored map of this site")
	projectPath := flag.String("project", "", "Export a .sitemap project file")
	output := flag.String("o", "", "Output file (.png or .pdf)")
	list := flag.Bool("list", false, "List stored sites and exit")
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(config.LogLevel(), os.Stderr)
	ctx := context.Background()

	if *list {
		st, err := store.Open(config.StorePath(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open store")
		}
		defer st.Close()
		sites, err := st.Sites(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to list sites")
		}
		for _, s := range sites {
			fmt.Printf("%s\t%s\t%s\n", s.ID, s.Name, s.Address)
		}
		return
	}

	if (*siteID == "") == (*projectPath == "") || *output == "" {
		fmt.Println("Usage: sitemap-export (-site <id> | -project <file>) -o <out.png|out.pdf>")
		os.Exit(1)
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Msg("failed to create output directory")
		}
	}

	var (
		session *app.Session
		err     error
	)
	if *projectPath != "" {
		session, err = fromProject(*projectPath, log)
	} else {
		session, err = fromStore(ctx, *siteID, log)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load site map")
	}
	defer session.Close()

	if err := session.ExportFile(*output); err != nil {
		log.Fatal().Err(err).Msg("export failed")
	}
	fmt.Printf("Wrote %s (%d annotations)\n", *output, len(session.Editor.Annotations()))
}
