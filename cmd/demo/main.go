// Command demo seeds the configured store with a sample dashboard.
package main

import (
	"context"
	"fmt"

	"tableflip.dev/dashtab/pkg/app"
	"tableflip.dev/dashtab/pkg/config"
	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/printers"
	"tableflip.dev/dashtab/pkg/session"
)

type sampleTab struct {
	name  string
	cards []dashboard.CardID
}

var sample = []sampleTab{
	{name: "Overview", cards: []dashboard.CardID{1, 2, 3}},
	{name: "Revenue", cards: []dashboard.CardID{4, 5}},
	{name: "Customers", cards: []dashboard.CardID{6}},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	svc, closer, err := app.FromConfig(cfg)
	if err != nil {
		panic(err)
	}
	defer closer()

	dash, err := svc.CreateDashboard(ctx, "Demo")
	if err != nil {
		panic(err)
	}
	sess, err := svc.Edit(ctx, dash.ID, func(sess *session.Session) error {
		// The first tab added to a tabless dashboard comes with "Tab 1".
		id, err := sess.CreateNewTab()
		if err != nil {
			return err
		}
		ids := []dashboard.TabID{id + 1, id}
		for len(ids) < len(sample) {
			if id, err = sess.CreateNewTab(); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		for i, st := range sample {
			if err := sess.RenameTab(ids[i], st.name); err != nil {
				return err
			}
			for _, card := range st.cards {
				if _, err := sess.AddDashCard(card, dashboard.TabRef(ids[i]), 8, 4); err != nil {
					return err
				}
			}
		}
		return sess.SelectTab(dashboard.TabRef(ids[0]))
	})
	if err != nil {
		panic(err)
	}
	if err := svc.Save(ctx, sess); err != nil {
		panic(err)
	}

	pp := printers.PrettyPrint{}
	pp.Report(app.Report(sess.Snapshot()))
	fmt.Printf("seeded dashboard %d in %s\n", dash.ID, cfg.BasePath())
}
