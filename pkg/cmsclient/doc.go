// Package cmsclient provides the main entry point for creating content API clients.
//
// Basic usage:
//
//	client, err := cmsclient.New(&cms.Config{
//		Service:     "my-blog",
//		APIKey:      os.Getenv("CMS_API_KEY"),
//		WriteAPIKey: os.Getenv("CMS_WRITE_API_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res := client.Get(ctx, "blogs", "abc123", nil)
//	if rec, ok := res.Lenient(); ok {
//		fmt.Println(rec["title"])
//	}
//
// The returned client never fails a call with a Go error; inspect the
// cms.Result instead. See package cms for the result kinds.
package cmsclient
