package main

import (
	"fmt"
	"strconv"
	"strings"

	"droid.dev/instd/internal/auxops"
	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/dexopt"
	"droid.dev/instd/internal/idspace"
	"droid.dev/instd/internal/paths"
)

func parseUserID(s string) (idspace.UserID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("instd: bad userid %q: %w", s, err)
	}
	return idspace.UserID(v), nil
}

func parseAppID(s string) (idspace.AppID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("instd: bad appid %q: %w", s, err)
	}
	return idspace.AppID(v), nil
}

func parseStorageFlags(s string) (idspace.StorageFlags, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("instd: bad storage flags %q: %w", s, err)
	}
	return idspace.StorageFlags(v), nil
}

func parseUserList(s string) ([]idspace.UserID, error) {
	parts := strings.Split(s, ",")
	users := make([]idspace.UserID, 0, len(parts))
	for _, p := range parts {
		u, err := parseUserID(p)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func absArg(s string) (*check.Absolute, error) {
	abs, err := check.NewAbs(s)
	if err != nil {
		return nil, fmt.Errorf("instd: bad absolute path %q: %w", s, err)
	}
	return abs, nil
}

// parseVolPkgUserFlags parses the "uuid pkgname userid flags" prefix shared
// by most app-data commands.
func parseVolPkgUserFlags(args []string) (paths.VolumeUUID, string, idspace.UserID, idspace.StorageFlags, error) {
	userid, err := parseUserID(args[2])
	if err != nil {
		return "", "", 0, 0, err
	}
	flags, err := parseStorageFlags(args[3])
	if err != nil {
		return "", "", 0, 0, err
	}
	return paths.VolumeUUID(args[0]), args[1], userid, flags, nil
}

// parseAppdataArgs parses "uuid pkgname userid flags appid seinfo", the
// shape shared by create_app_data and restorecon_app_data.
func parseAppdataArgs(args []string) (paths.VolumeUUID, string, idspace.UserID, idspace.StorageFlags, idspace.AppID, string, error) {
	if len(args) != 6 {
		return "", "", 0, 0, 0, "", fmt.Errorf("instd: expected 6 arguments, got %d", len(args))
	}
	uuid, pkgname, userid, flags, err := parseVolPkgUserFlags(args[:4])
	if err != nil {
		return "", "", 0, 0, 0, "", err
	}
	appid, err := parseAppID(args[4])
	if err != nil {
		return "", "", 0, 0, 0, "", err
	}
	return uuid, pkgname, userid, flags, appid, args[5], nil
}

// parseDexoptArgs parses the fixed 10-token dexopt argument line: apk_path
// appid userid pkgname isa dexopt_needed oat_dir flags uuid use_profiles.
func parseDexoptArgs(args []string) (dexopt.Request, error) {
	if len(args) != 10 {
		return dexopt.Request{}, fmt.Errorf("instd: dexopt requires 10 arguments, got %d", len(args))
	}
	appid, err := parseAppID(args[1])
	if err != nil {
		return dexopt.Request{}, err
	}
	userid, err := parseUserID(args[2])
	if err != nil {
		return dexopt.Request{}, err
	}
	needed, err := strconv.Atoi(args[5])
	if err != nil {
		return dexopt.Request{}, fmt.Errorf("instd: bad dexopt_needed %q: %w", args[5], err)
	}
	flagsv, err := strconv.ParseUint(args[7], 10, 32)
	if err != nil {
		return dexopt.Request{}, fmt.Errorf("instd: bad flags %q: %w", args[7], err)
	}
	useProfiles, err := strconv.ParseBool(args[9])
	if err != nil {
		return dexopt.Request{}, fmt.Errorf("instd: bad use_profiles %q: %w", args[9], err)
	}
	oatDir := args[6]
	if oatDir == "!" {
		oatDir = ""
	}
	return dexopt.Request{
		ApkPath:        args[0],
		UID:            appid,
		UserID:         userid,
		Pkgname:        args[3],
		InstructionSet: args[4],
		Needed:         dexopt.Needed(needed),
		OatDir:         oatDir,
		Flags:          dexopt.Flags(flagsv),
		VolumeUUID:     paths.VolumeUUID(args[8]),
		UseProfiles:    useProfiles,
	}, nil
}

// parseSizeArgs parses the fixed 9-token get_app_size argument line: uuid
// pkgname userid flags apk_path lib_dir fwdlock_apk asec_path isa.
func parseSizeArgs(args []string) (auxops.SizeRequest, error) {
	if len(args) != 9 {
		return auxops.SizeRequest{}, fmt.Errorf("instd: get_app_size requires 9 arguments, got %d", len(args))
	}
	userid, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return auxops.SizeRequest{}, fmt.Errorf("instd: bad userid %q: %w", args[2], err)
	}
	flags, err := parseStorageFlags(args[3])
	if err != nil {
		return auxops.SizeRequest{}, err
	}
	return auxops.SizeRequest{
		Uuid:           paths.VolumeUUID(args[0]),
		Pkgname:        args[1],
		UserID:         userid,
		Flags:          flags,
		ApkPath:        args[4],
		LibDirPath:     args[5],
		FwdLockApkPath: args[6],
		AsecPath:       args[7],
		InstructionSet: args[8],
	}, nil
}
