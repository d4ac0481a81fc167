// Package apache wraps the host-level Apache management commands and the
// sites-available/sites-enabled directory layout.
//
// All mutations go through a2ensite, a2dissite, apache2ctl and service, run
// with sudo under a hard timeout. Directory listings are always live reads.
package apache
