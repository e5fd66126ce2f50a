package rbac

// Default policy. Guests get the same quiz surface as registered users;
// what separates them is persistence of identity, not permissions. The
// leaderboard has no entry because it is served unauthenticated.
var RolePermissions = map[string][]string{
	"guest": {
		"quiz:create",
		"quiz:view-own",
		"quiz:submit",
		"submission:view-own",
		"difficulty:view",
	},
	"user": {
		"quiz:create",
		"quiz:view-own",
		"quiz:submit",
		"submission:view-own",
		"difficulty:view",
	},
	"admin": {
		"*", // everything
	},
}
