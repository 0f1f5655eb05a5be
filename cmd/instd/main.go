// Command instd is the privileged storage and dexopt helper. It is invoked
// once per operation by a synchronous, less-privileged caller; see the
// per-command help text for argument order.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"droid.dev/instd/command"
	"droid.dev/instd/internal/appdata"
	"droid.dev/instd/internal/auxops"
	"droid.dev/instd/internal/cachesweep"
	"droid.dev/instd/internal/config"
	"droid.dev/instd/internal/dexopt"
	"droid.dev/instd/internal/elog"
	"droid.dev/instd/internal/idmap"
	"droid.dev/instd/internal/instderr"
	"droid.dev/instd/internal/movepkg"
	"droid.dev/instd/internal/paths"
	"droid.dev/instd/internal/selinux"
)

var errSuccess = errors.New("success")

func main() {
	// A dexopt or idmap child never reaches command parsing: the marker
	// env var must be handled before anything else touches goroutines
	// or shared state, matching the discipline documented in
	// internal/dexopt/childproc_linux.go.
	if os.Getenv(dexopt.EnvChildMarker) == "1" {
		p, err := dexopt.DecodeChildParams()
		if err != nil {
			log.Fatalf("instd: bad child params: %v", err)
		}
		dexopt.RunChild(p)
		log.Fatal("instd: child returned")
	}

	buildCommand(os.Stderr).MustParse(os.Args[1:], func(err error) {
		if errors.Is(err, errSuccess) {
			os.Exit(0)
		}
		if err != nil {
			var ie *instderr.Error
			if errors.As(err, &ie) {
				log.Print(ie)
				os.Exit(1)
			}
			log.Print(err)
			os.Exit(1)
		}
	})
	log.Fatal("unreachable")
}

// daemon bundles every manager instd's subcommands dispatch into, built
// once from the default [config.Config].
type daemon struct {
	cfg   *config.Config
	rp    *paths.Resolver
	label selinux.Labeler
	msg   *elog.DefaultMsg

	data    *appdata.Manager
	mover   *movepkg.Mover
	sweeper *cachesweep.Sweeper
	dex     *dexopt.Orchestrator
	overlay *idmap.Orchestrator
	extra   *auxops.Manager
}

func newDaemon(verbose bool) *daemon {
	cfg := config.Default()
	rp := paths.New(cfg)
	label := selinux.New()
	msg := elog.NewMsg(verbose)

	d := &daemon{cfg: cfg, rp: rp, label: label, msg: msg}
	d.data = appdata.New(rp, label)
	d.mover = movepkg.New(rp, d.data, label, cfg.CpPath.String(), nil, msg)
	d.sweeper = cachesweep.New(rp, msg)
	d.dex = dexopt.New(cfg, rp, msg)
	d.overlay = idmap.New(cfg.IdmapPath.String(), msg)
	d.extra = auxops.New(cfg, rp, label, msg)
	return d
}

func buildCommand(out io.Writer) command.Command {
	var flagVerbose bool
	var d *daemon

	c := command.New(out, log.Printf, "instd", func([]string) error {
		d = newDaemon(flagVerbose)
		return nil
	}).
		Flag(&flagVerbose, "v", command.BoolFlag(false), "Print verbose diagnostics")

	c.Command("create_app_data",
		"uuid pkgname userid flags appid seinfo — create an app's CE/DE data directories",
		func(args []string) error {
			uuid, pkgname, userid, flags, appid, seinfo, err := parseAppdataArgs(args)
			if err != nil {
				return err
			}
			if err := d.data.Create(uuid, pkgname, userid, flags, appid, seinfo); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("clear_app_data",
		"uuid pkgname userid flags [cache|code_cache|all] — truncate an app's data directory contents",
		func(args []string) error {
			if len(args) < 4 {
				return fmt.Errorf("instd: clear_app_data requires at least 4 arguments")
			}
			uuid, pkgname, userid, flags, err := parseVolPkgUserFlags(args[:4])
			if err != nil {
				return err
			}
			clear := appdata.ClearAll
			if len(args) > 4 {
				switch args[4] {
				case "cache":
					clear = appdata.ClearCacheOnly
				case "code_cache":
					clear = appdata.ClearCodeCacheOnly
				case "all":
					clear = appdata.ClearAll
				default:
					return fmt.Errorf("instd: unknown clear mode %q", args[4])
				}
			}
			if err := d.data.Clear(uuid, pkgname, userid, flags, clear); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("destroy_app_data",
		"uuid pkgname userid flags — remove an app's CE/DE data directories",
		func(args []string) error {
			if len(args) != 4 {
				return fmt.Errorf("instd: destroy_app_data requires 4 arguments")
			}
			uuid, pkgname, userid, flags, err := parseVolPkgUserFlags(args)
			if err != nil {
				return err
			}
			if err := d.data.Destroy(uuid, pkgname, userid, flags); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("restorecon_app_data",
		"uuid pkgname userid flags appid seinfo — re-apply SELinux labels to an app's data directories",
		func(args []string) error {
			uuid, pkgname, userid, flags, appid, seinfo, err := parseAppdataArgs(args)
			if err != nil {
				return err
			}
			if err := d.data.Restorecon(uuid, pkgname, userid, flags, appid, seinfo); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("move_complete_app",
		"from_uuid to_uuid pkgname data_app_name appid seinfo user[,user...] — move an app's code and data to another volume",
		func(args []string) error {
			if len(args) != 7 {
				return fmt.Errorf("instd: move_complete_app requires 7 arguments")
			}
			appid, err := parseAppID(args[4])
			if err != nil {
				return err
			}
			users, err := parseUserList(args[6])
			if err != nil {
				return err
			}
			if err := d.mover.Move(paths.VolumeUUID(args[0]), paths.VolumeUUID(args[1]), args[2], args[3], appid, args[5], users); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("free_cache",
		"uuid free_size_bytes — evict cache entries by mtime until free_size_bytes is available",
		func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("instd: free_cache requires 2 arguments")
			}
			need, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("instd: bad free_size_bytes %q: %w", args[1], err)
			}
			if err := d.sweeper.FreeCache(paths.VolumeUUID(args[0]), need); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("dexopt",
		"apk_path appid userid pkgname isa dexopt_needed oat_dir flags uuid use_profiles — compile an app's dex code",
		func(args []string) error {
			req, err := parseDexoptArgs(args)
			if err != nil {
				return err
			}
			out, err := d.dex.Run(req)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, out)
			return errSuccess
		})

	c.Command("idmap",
		"target_apk overlay_apk uid — produce the resource-cache idmap entry for an overlay",
		func(args []string) error {
			if len(args) != 3 {
				return fmt.Errorf("instd: idmap requires 3 arguments")
			}
			uid, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("instd: bad uid %q: %w", args[2], err)
			}
			out, err := d.overlay.Run(args[0], args[1], uint32(uid))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, out)
			return errSuccess
		})

	c.Command("linklib",
		"uuid pkgname asec_lib_dir userid — relink an ASEC-hosted package's native libraries",
		func(args []string) error {
			if len(args) != 4 {
				return fmt.Errorf("instd: linklib requires 4 arguments")
			}
			userid, err := parseUserID(args[3])
			if err != nil {
				return err
			}
			if err := d.extra.LinkLib(paths.VolumeUUID(args[0]), args[1], args[2], userid); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("link_file",
		"relative_path from_base to_base — hard-link a validated app-data sub-path between two bases",
		func(args []string) error {
			if len(args) != 3 {
				return fmt.Errorf("instd: link_file requires 3 arguments")
			}
			if err := d.extra.LinkFile(args[0], args[1], args[2]); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("create_oat_dir",
		"oat_dir isa — create an oat directory and its ISA subdirectory",
		func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("instd: create_oat_dir requires 2 arguments")
			}
			abs, err := absArg(args[0])
			if err != nil {
				return err
			}
			if err := d.extra.CreateOatDir(abs, args[1]); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("rm_package_dir",
		"apk_path — recursively remove an installed package directory",
		func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("instd: rm_package_dir requires 1 argument")
			}
			abs, err := absArg(args[0])
			if err != nil {
				return err
			}
			if err := d.extra.RmPackageDir(abs); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("rm_dex",
		"apk_path isa — remove a stale dalvik-cache entry",
		func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("instd: rm_dex requires 2 arguments")
			}
			if err := d.extra.RmDex(args[0], args[1]); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("get_app_size",
		"uuid pkgname userid flags apk_path lib_dir fwdlock_apk asec_path isa — report code/data/cache/asec byte counts",
		func(args []string) error {
			req, err := parseSizeArgs(args)
			if err != nil {
				return err
			}
			sz, err := d.extra.GetAppSize(req)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%d %d %d %d\n", sz.CodeSize, sz.DataSize, sz.CacheSize, sz.AsecSize)
			return errSuccess
		})

	c.Command("move_files",
		"— apply pending update-command batches from the configured updatecmds directory",
		func(args []string) error {
			if err := d.extra.MoveFiles(); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("mark_boot_complete",
		"isa — clear the dalvik-cache .booting marker for isa",
		func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("instd: mark_boot_complete requires 1 argument")
			}
			if err := d.extra.MarkBootComplete(args[0]); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("make_user_config",
		"userid — create a user's config directory",
		func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("instd: make_user_config requires 1 argument")
			}
			userid, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if err := d.extra.MakeUserConfig(userid); err != nil {
				return err
			}
			return errSuccess
		})

	c.Command("delete_user",
		"uuid userid — remove all storage belonging to a user",
		func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("instd: delete_user requires 2 arguments")
			}
			userid, err := parseUserID(args[1])
			if err != nil {
				return err
			}
			if err := d.extra.DeleteUser(paths.VolumeUUID(args[0]), userid); err != nil {
				return err
			}
			return errSuccess
		})

	return c
}
