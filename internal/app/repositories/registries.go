package repositories

import (
	"github.com/Masterminds/squirrel"

	"github.com/casportal/casportal/internal/app/query"
)

// psql builds statements with Postgres placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Query registries: the exact filter and sort surface each listing endpoint
// exposes. Field names follow the wire convention (snake_case); anything not
// listed here is rejected by the composer.
var (
	profileRegistry = query.NewRegistry(map[string]query.Field{
		"id":              {Column: "p.id", Sortable: true},
		"first_name":      {Column: "p.first_name", Sortable: true},
		"last_name":       {Column: "p.last_name", Sortable: true},
		"post_visibility": {Column: "p.post_visibility"},
		"is_moderator":    {Column: "p.is_moderator"},
		"is_admin":        {Column: "p.is_admin"},
		"group_id":        {Column: "p.group_id"},
		"date_joined":     {Column: "p.date_joined", Sortable: true},
		"last_online":     {Column: "p.last_online", Sortable: true},
	}, nil)

	groupRegistry = query.NewRegistry(map[string]query.Field{
		"id":                     {Column: "g.id"},
		"name":                   {Column: "g.name", Sortable: true},
		"graduation_year":        {Column: "g.graduation_year", Sortable: true},
		"description":            {Column: "g.description"},
		"coordinator_id":         {Column: "g.coordinator_id"},
		"date_created":           {Column: "g.date_created", Sortable: true},
		"coordinator_first_name": {Column: "cp.first_name", Join: "coordinator"},
		"coordinator_last_name":  {Column: "cp.last_name", Join: "coordinator"},
	}, map[string]string{
		"coordinator": "profiles cp ON cp.id = g.coordinator_id",
	})

	reflectionRegistry = query.NewRegistry(map[string]query.Field{
		"id":                {Column: "r.id", Sortable: true},
		"profile_id":        {Column: "r.profile_id"},
		"title":             {Column: "r.title", Sortable: true},
		"text_content":      {Column: "r.text_content"},
		"slug":              {Column: "r.slug"},
		"post_visibility":   {Column: "r.post_visibility"},
		"creativity":        {Column: "r.creativity"},
		"activity":          {Column: "r.activity"},
		"service":           {Column: "r.service"},
		"date_added":        {Column: "r.date_added", Sortable: true},
		"tag_name":          {Column: "t.name", Join: "tags"},
		"author_first_name": {Column: "ap.first_name", Join: ""},
		"author_last_name":  {Column: "ap.last_name", Join: ""},
	}, map[string]string{
		// the author join is always attached by the visibility scope, so
		// author fields carry no join name of their own
		"tags": "reflection_tags rt ON rt.reflection_id = r.id JOIN tags t ON t.id = rt.tag_id",
	})

	tagRegistry = query.NewRegistry(map[string]query.Field{
		"id":         {Column: "t.id", Sortable: true},
		"name":       {Column: "t.name", Sortable: true},
		"date_added": {Column: "t.date_added", Sortable: true},
	}, nil)

	commentRegistry = query.NewRegistry(map[string]query.Field{
		"id":                {Column: "c.id", Sortable: true},
		"profile_id":        {Column: "c.profile_id"},
		"reflection_id":     {Column: "c.reflection_id"},
		"content":           {Column: "c.content"},
		"date_added":        {Column: "c.date_added", Sortable: true},
		"author_first_name": {Column: "cap.first_name", Join: "author"},
		"author_last_name":  {Column: "cap.last_name", Join: "author"},
	}, map[string]string{
		"author": "profiles cap ON cap.id = c.profile_id",
	})

	notificationRegistry = query.NewRegistry(map[string]query.Field{
		"id":         {Column: "n.id", Sortable: true},
		"profile_id": {Column: "n.profile_id"},
		"content":    {Column: "n.content"},
		"date_sent":  {Column: "n.date_sent", Sortable: true},
		"read":       {Column: "nr.read", Sortable: true},
	}, nil)

	// The posted listing never joins notification_recipients, so the
	// per-recipient read field is not reachable from it.
	notificationPostedRegistry = query.NewRegistry(map[string]query.Field{
		"id":        {Column: "n.id", Sortable: true},
		"content":   {Column: "n.content"},
		"date_sent": {Column: "n.date_sent", Sortable: true},
	}, nil)
)
