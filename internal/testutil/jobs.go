package testutil

import "fmt"

// SmallPointJob returns a compact single-point-source job that a test
// calculation can run in well under a second. The ses argument sets
// ses_per_logic_tree_path; everything else is fixed so runs with the
// same ses value are byte-for-byte reproducible.
func SmallPointJob(ses int) string {
	return fmt.Sprintf(`
calculation "integration-small" {
  description             = "single point source over a 2x2 grid"
  investigation_time      = 50
  ses_per_logic_tree_path = %d
  truncation_level        = 3
  random_seed             = 23
  poes                    = [0.1]
  quantiles               = [0.5]

  iml "PGA" {
    levels = [0.005, 0.05, 0.2, 0.5]
  }
}

site_collection {
  grid {
    region     = [[10.0, 45.0], [10.15, 45.0], [10.15, 45.15], [10.0, 45.15]]
    spacing_km = 10
    vs30       = 760
  }
}

source "point" "src-1" {
  tectonic_region_type    = "Active Shallow Crust"
  location                = [10.05, 45.05]
  lower_seismogenic_depth = 20

  mfd {
    a         = 4.2
    b         = 1.0
    min_mag   = 5.0
    max_mag   = 7.0
    bin_width = 0.5
  }

  nodal_plane {
    strike = 0
    dip    = 90
    rake   = 0
    weight = 1.0
  }

  hypocentral_depth {
    depth_km = 10
    weight   = 1.0
  }
}

logic_tree "gmpe" {
  branch_set "bs-gmpe" {
    applies_to_tectonic_region_type = "Active Shallow Crust"

    branch "b1" {
      weight = 0.6
      gmpe   = "BooreAtkinson2008"
    }
    branch "b2" {
      weight = 0.4
      gmpe   = "SadighEtAl1997"
    }
  }
}
`, ses)
}
